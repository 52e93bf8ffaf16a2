package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ontypehq/qtts/internal/logging"
)

var ErrClosed = errors.New("worker closed")

// Process is one running helper. Calls are serialized.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	dec    *json.Decoder
	stderr *lockedBuffer

	mu     sync.Mutex
	closed bool
}

// Start launches command with args and extra environment, then sends a
// ping so that import or model-load failures surface immediately.
func Start(ctx context.Context, command string, args, env []string, warmup time.Duration) (*Process, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = append(os.Environ(), env...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}

	p := &Process{cmd: cmd, stdin: stdin, dec: json.NewDecoder(stdout), stderr: stderr}

	if warmup > 0 {
		wctx, cancel := context.WithTimeout(ctx, warmup)
		defer cancel()
		if _, err := p.Call(wctx, Request{Task: TaskPing}); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("worker failed to start: %s", p.failure(err))
		}
	}
	logging.Debugf("worker %s started (pid %d)", command, cmd.Process.Pid)
	return p, nil
}

// Call sends one request and waits for its response. If ctx ends first the
// helper is killed, since its output stream can no longer be trusted.
func (p *Process) Call(ctx context.Context, req Request) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := p.stdin.Write(append(line, '\n')); err != nil {
		p.kill()
		return nil, fmt.Errorf("write request: %s", p.failure(err))
	}

	type result struct {
		resp Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		var r result
		r.err = p.dec.Decode(&r.resp)
		done <- r
	}()

	select {
	case <-ctx.Done():
		p.kill()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			p.kill()
			return nil, fmt.Errorf("read response: %s", p.failure(r.err))
		}
		if r.resp.ID != req.ID {
			return nil, fmt.Errorf("response id %q does not match request %q", r.resp.ID, req.ID)
		}
		if !r.resp.OK {
			msg := r.resp.Error
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("worker %s: %s", req.Task, msg)
		}
		return &r.resp, nil
	}
}

func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	_ = p.stdin.Close()

	waited := make(chan error, 1)
	go func() { waited <- p.cmd.Wait() }()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		_ = p.cmd.Process.Kill()
		<-waited
	}
	return nil
}

// kill is called with mu held. Waiting for exit also guarantees that the
// helper's stderr has been fully collected.
func (p *Process) kill() {
	if p.closed {
		return
	}
	p.closed = true
	_ = p.stdin.Close()
	_ = p.cmd.Process.Kill()

	waited := make(chan struct{})
	go func() {
		_ = p.cmd.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
	}
}

// failure prefers the helper's stderr over the pipe error.
func (p *Process) failure(err error) string {
	if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
		return msg
	}
	return err.Error()
}

// lockedBuffer collects stderr; exec copies into it from its own goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
