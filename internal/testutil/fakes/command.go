package fakes

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// CommandRunner records commands instead of running them. When Pages is set
// it imitates pdftoppm by writing one file per page next to the output
// prefix, which is the last argument.
type CommandRunner struct {
	mu sync.Mutex

	Pages  int
	Stderr string
	Err    error

	// Calls records the arguments of every call, the command name first.
	Calls [][]string
}

// Run records the call and fakes its effect.
func (c *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, append([]string{name}, args...))
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if c.Err != nil {
		return nil, []byte(c.Stderr), c.Err
	}
	if c.Pages == 0 || len(args) == 0 {
		return nil, nil, nil
	}

	first, last := 1, c.Pages
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "-f":
			first, _ = strconv.Atoi(args[i+1])
		case "-l":
			last, _ = strconv.Atoi(args[i+1])
		}
	}
	prefix := args[len(args)-1]
	for p := first; p <= last && p <= c.Pages; p++ {
		path := fmt.Sprintf("%s-%02d.png", prefix, p)
		if err := os.WriteFile(path, []byte(fmt.Sprintf("png-%d", p)), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}
