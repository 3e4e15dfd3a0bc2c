package logfields

import (
	"strings"

	"go.uber.org/zap"
)

func Command(name string, args []string) zap.Field {
	return zap.String("cmd", name+" "+strings.Join(args, " "))
}

func WorkDir(val string) zap.Field {
	return zap.String("cmd.workdir", val)
}

func ExitCode(val int) zap.Field {
	return zap.Int("cmd.exit_code", val)
}
