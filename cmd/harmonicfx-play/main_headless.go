//go:build headless

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "harmonicfx-play was built without audio and MIDI device support")
	os.Exit(1)
}
