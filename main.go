package main

import (
	"fmt"
	"os"

	"sentiment-lens/cmd"

	"go.uber.org/zap"
)

func main() {
	err := cmd.NewRootCommand().Execute()
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
