// Package nvimrpc connects the panel to a running Neovim over msgpack-RPC.
// Outbound calls are queued and sent in order by one worker; inbound Dir and
// Gui notifications are delivered on a channel for the UI loop.
package nvimrpc

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/neovim/go-client/nvim"
	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/nvtree/internal/rpc"
	"github.com/oakwood-commons/nvtree/pkg/logger"
)

//go:embed shim.lua
var shimLua string

// Shim returns the Lua installed into Neovim on connect.
func Shim() string { return shimLua }

// ErrNotConnected is reported for requests made without a live connection.
var ErrNotConnected = errors.New("not connected to neovim")

// Defaults for zero Options fields.
const (
	DefaultQueueSize      = 64
	DefaultConnectTimeout = 5 * time.Second
)

// API is the part of *nvim.Nvim the client uses.
type API interface {
	RegisterHandler(method string, fn any) error
	Subscribe(event string) error
	SetCurrentDirectory(dir string) error
	FeedKeys(keys, mode string, escapeCSI bool) error
	Call(fname string, result any, args ...any) error
	ExecLua(code string, result any, args ...any) error
	Serve() error
	Close() error
}

// DialFunc opens a connection to address.
type DialFunc func(ctx context.Context, address string, log logr.Logger) (API, error)

// Options configures a Client.
type Options struct {
	Address        string
	InstallShim    bool
	QueueSize      int
	ConnectTimeout time.Duration
	// Dial replaces the default go-client dialer; used by tests.
	Dial DialFunc
}

type request struct {
	name string
	fn   func(API) error
}

// Client implements rpc.Remote on top of go-client.
type Client struct {
	opts Options
	log  logr.Logger

	api   API
	ready atomic.Bool

	queue chan request

	notesMu     sync.RWMutex
	notes       chan rpc.Notification
	notesClosed bool

	// mu orders Start against Close.
	mu        sync.Mutex
	started   bool
	stop      chan struct{}
	stopOnce  sync.Once
	runDone   chan struct{}
	closeErr  error
	closeOnce sync.Once
}

var _ rpc.Remote = (*Client)(nil)

// New returns an unconnected client.
func New(opts Options, log logr.Logger) *Client {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.Dial == nil {
		opts.Dial = dialNvim
	}
	return &Client{
		opts:    opts,
		log:     logger.Component(&log, "nvimrpc"),
		queue:   make(chan request, opts.QueueSize),
		notes:   make(chan rpc.Notification, opts.QueueSize),
		stop:    make(chan struct{}),
		runDone: make(chan struct{}),
	}
}

func dialNvim(ctx context.Context, address string, log logr.Logger) (API, error) {
	v, err := nvim.Dial(address,
		nvim.DialContext(ctx),
		nvim.DialServe(false),
		nvim.DialLogf(func(format string, args ...any) {
			log.V(1).Info(fmt.Sprintf(format, args...))
		}),
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Notifications is the inbound stream. It is closed when the connection
// ends.
func (c *Client) Notifications() <-chan rpc.Notification { return c.notes }

// Start connects and serves in the background until Close or until the
// connection drops. Start after Close fails with ErrNotConnected.
func (c *Client) Start(ctx context.Context) error {
	api, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.stop:
		_ = api.Close()
		return fmt.Errorf("%w: client closed", ErrNotConnected)
	default:
	}
	c.api = api
	if c.opts.InstallShim {
		// First in the queue, so it runs before anything the panel sends.
		c.queue <- request{name: "install shim", fn: func(a API) error { return a.ExecLua(shimLua, nil) }}
	}
	c.ready.Store(true)
	c.started = true
	c.log.Info("connected", "address", c.opts.Address)

	go func() {
		defer close(c.runDone)
		if err := c.run(ctx); err != nil {
			c.log.Error(err, "connection ended")
		}
	}()
	return nil
}

func (c *Client) dial(ctx context.Context) (API, error) {
	if c.opts.Address == "" {
		return nil, fmt.Errorf("%w: no server address", ErrNotConnected)
	}
	dctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	api, err := c.opts.Dial(dctx, c.opts.Address, c.log)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.opts.Address, err)
	}
	for _, topic := range []string{rpc.TopicDir, rpc.TopicGui} {
		if err := api.RegisterHandler(topic, c.handler(topic)); err != nil {
			_ = api.Close()
			return nil, fmt.Errorf("register %s handler: %w", topic, err)
		}
	}
	return api, nil
}

func (c *Client) handler(topic string) func(args ...any) {
	return func(args ...any) {
		c.notesMu.RLock()
		defer c.notesMu.RUnlock()
		if c.notesClosed {
			return
		}
		select {
		case c.notes <- rpc.Notification{Topic: topic, Args: args}:
		case <-c.stop:
		}
	}
}

// run serves the connection and drains the outbound queue until either side
// stops.
func (c *Client) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := c.api.Serve()
		select {
		case <-c.stop:
			return nil
		default:
		}
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		c.work(ctx)
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-c.stop:
		}
		c.closeAPI()
		return nil
	})

	err := g.Wait()
	c.ready.Store(false)
	c.closeNotes()
	return err
}

func (c *Client) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-c.queue:
			if err := r.fn(c.api); err != nil {
				c.log.Error(err, "request failed", "request", r.name)
			}
		}
	}
}

func (c *Client) enqueue(name string, fn func(API) error) {
	if !c.ready.Load() {
		c.log.V(1).Info("dropping request", "request", name, "error", ErrNotConnected.Error())
		return
	}
	select {
	case c.queue <- request{name: name, fn: fn}:
	case <-c.stop:
	default:
		c.log.Info("outbound queue full, dropping request", "request", name)
	}
}

func (c *Client) closeAPI() {
	c.closeOnce.Do(func() {
		c.ready.Store(false)
		if c.api != nil {
			c.closeErr = c.api.Close()
		}
	})
}

func (c *Client) closeNotes() {
	c.notesMu.Lock()
	defer c.notesMu.Unlock()
	if !c.notesClosed {
		c.notesClosed = true
		close(c.notes)
	}
}

// Close ends the connection and waits for the background goroutines.
func (c *Client) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.runDone
	} else {
		c.closeAPI()
		c.closeNotes()
	}
	return c.closeErr
}

// Ready reports whether the connection is up.
func (c *Client) Ready() bool { return c.ready.Load() }

func (c *Client) Subscribe(topic string) {
	c.enqueue("subscribe "+topic, func(a API) error { return a.Subscribe(topic) })
}

func (c *Client) DropFile(path string) {
	c.enqueue(rpc.DropFunction, func(a API) error { return a.Call(rpc.DropFunction, nil, path) })
}

func (c *Client) ChangeDirectory(dir []byte) {
	d := string(dir)
	c.enqueue("set current dir", func(a API) error { return a.SetCurrentDirectory(d) })
}

func (c *Client) FeedKeys(keys, mode string, escapeCSI bool) {
	c.enqueue("feedkeys", func(a API) error { return a.FeedKeys(keys, mode, escapeCSI) })
}
