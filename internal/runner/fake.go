package runner

import (
	"context"
	"fmt"
	"strings"
)

// Call records one invocation made through a Fake.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake is an in-memory Runner for tests. Responses are matched by command-line prefix.
type Fake struct {
	// Missing lists binaries LookPath reports as absent.
	Missing map[string]bool
	// Responses maps a command-line prefix to its stdout.
	Responses map[string]string
	// Failures maps a command-line prefix to the error returned.
	Failures map[string]error

	Calls []Call
}

// Run records the call and returns the first matching failure or response.
func (f *Fake) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	f.Calls = append(f.Calls, call)
	if f.Missing[name] {
		return "", fmt.Errorf("%s: executable file not found in $PATH", name)
	}
	line := call.String()
	for prefix, err := range f.Failures {
		if strings.HasPrefix(line, prefix) {
			return "", err
		}
	}
	for prefix, out := range f.Responses {
		if strings.HasPrefix(line, prefix) {
			return out, nil
		}
	}
	return "", nil
}

// LookPath reports name as found unless listed in Missing.
func (f *Fake) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", fmt.Errorf("%s: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// Commands returns the recorded command lines.
func (f *Fake) Commands() []string {
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}
