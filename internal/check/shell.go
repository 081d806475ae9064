package check

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

// ShellCommand joins exe and args into one shell command line. exe is used
// verbatim so wrappers such as "carton exec perlcritic" work; every argument
// is quoted.
func ShellCommand(exe string, args []string) string {
	return shellCommand(runtime.GOOS, exe, args)
}

func shellCommand(goos, exe string, args []string) string {
	quote := posixQuote
	if goos == "windows" {
		quote = windowsQuote
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(exe))
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(quote(arg))
	}
	return b.String()
}

func posixQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if strings.IndexFunc(arg, needsPosixQuote) < 0 {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func needsPosixQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=+,@", r)
}

// cmd.exe has no single quotes; '%' still expands inside double quotes when
// it brackets a variable name, which perlcritic's template never does.
func windowsQuote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\"&|<>^%~()") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `""`) + `"`
}

// shellCmd builds the platform shell invocation for line.
func shellCmd(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}

// shellLaunchFailed reports the exit statuses POSIX shells use for a command
// that was not found (127) or not executable (126). cmd.exe uses 9009.
func shellLaunchFailed(code int) bool {
	if runtime.GOOS == "windows" {
		return code == 9009
	}
	return code == 126 || code == 127
}
