package main

import (
	"os"
)

func main() {
	if err := execute(newRootCmd(os.Stdout, os.Stderr)); err != nil {
		os.Stderr.WriteString("timetable: " + err.Error() + "\n")
		os.Exit(1)
	}
}
