package toolrun

import (
	"context"
	"sync"
)

// Fake is a Runner that records invocations instead of running anything.
// Handlers registered with Handle are called for matching commands, which
// lets tests create the files a real tool would produce or inject failures.
type Fake struct {
	mu       sync.Mutex
	calls    []Cmd
	handlers map[string]func(Cmd) error
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{handlers: map[string]func(Cmd) error{}}
}

// Handle registers fn for commands whose Key() equals key.
func (f *Fake) Handle(key string, fn func(Cmd) error) {
	f.mu.Lock()
	f.handlers[key] = fn
	f.mu.Unlock()
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, cmd Cmd) error {
	f.mu.Lock()
	c := cmd
	c.Args = append([]string(nil), cmd.Args...)
	f.calls = append(f.calls, c)
	fn := f.handlers[cmd.Key()]
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return fn(c)
}

// Calls returns the commands run so far, in order.
func (f *Fake) Calls() []Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Cmd(nil), f.calls...)
}

// Keys returns Key() of every command run so far, in order.
func (f *Fake) Keys() []string {
	calls := f.Calls()
	keys := make([]string, len(calls))
	for i, c := range calls {
		keys[i] = c.Key()
	}
	return keys
}
