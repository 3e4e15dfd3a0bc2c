package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

const appName = "prflow"

var logger = zap.NewNop()

// Version is set via a ldflag on compilation
var Version = "unknown"

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
	os.Exit(1)
}

func panicHandler() {
	if r := recover(); r != nil {
		logger.Info(
			"panic caught , terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

func hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

func main() {
	defer panicHandler()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	goodbye.Notify(ctx)
	goodbye.Register(func(_ context.Context, sig os.Signal) {
		if sig != nil {
			logger.Info(fmt.Sprintf("terminating, received signal %s", sig.String()))
		}

		cancelFn()
	})

	exitCode := 0
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exitCode = 1

		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
		}

		logger.Debug(
			"command failed",
			logfields.Event("command_failed"),
			zap.Error(err),
		)
	}

	goodbye.Exit(context.Background(), exitCode)
}
