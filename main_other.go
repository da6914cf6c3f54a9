//go:build !windows

package main

// Off Windows there is no surface backend; run reports it and exits.
func main() {
	run()
}

func onMain(f func()) {
	f()
}
