//go:build js && wasm

package main

import "github.com/Its-donkey/eventpage/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
