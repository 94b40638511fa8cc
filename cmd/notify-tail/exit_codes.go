package main

const (
	exitCodeSuccess = 0
	exitCodeUsage   = 1
	exitCodeConfig  = 2
	exitCodeSource  = 3
	exitCodeRuntime = 4
)
