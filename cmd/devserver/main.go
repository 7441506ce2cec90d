package main

import (
	"flag"
	"log"
	"os"

	"github.com/ajudae/go-client/internal/devserver"
	"github.com/ajudae/go-client/internal/flagx"
)

func main() {

	addr := ":3000"
	if v, ok := os.LookupEnv("AJUDAE_DEV_ADDR"); ok {
		addr = v
	}

	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-listen"})
	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	fs.StringVar(&addr, "listen", addr, "Listen address")
	fs.StringVar(&addr, "l", addr, "Listen address (short)")
	_ = fs.Parse(args)

	s := devserver.New(devserver.Options{})
	log.Fatal(s.Start(addr))

}
