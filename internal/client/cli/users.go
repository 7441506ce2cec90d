package cli

import (
	"context"
	"fmt"
)

func (a *App) listTeachers(ctx context.Context, search string) {
	teachers, err := a.teachers.List(ctx, 1, pageSize, search)
	if err != nil {
		a.printErr(ctx, err)
		return
	}
	if len(teachers) == 0 {
		fmt.Println("No teachers")
		return
	}

	for _, t := range teachers {
		fmt.Printf("%s  %s  <%s>\n", t.ID, t.Name, t.Email)
	}
}

func (a *App) listStudents(ctx context.Context, search string) {
	students, err := a.students.List(ctx, 1, pageSize, search)
	if err != nil {
		a.printErr(ctx, err)
		return
	}
	if len(students) == 0 {
		fmt.Println("No students")
		return
	}

	for _, s := range students {
		fmt.Printf("%s  %s  <%s>\n", s.ID, s.Name, s.Email)
	}
}
