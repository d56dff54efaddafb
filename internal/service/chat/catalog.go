package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	toolhandler "github.com/w-h-a/rio/tool_handler"
	"github.com/w-h-a/rio/tool_handler/chart"
	"github.com/w-h-a/rio/tool_handler/database"
	"github.com/w-h-a/rio/tool_handler/websearch"
)

var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrReservedTool  = errors.New("tool name is reserved")
)

// BuiltinTools are the names the chat loop always owns.
var BuiltinTools = []string{database.Name, chart.Name, websearch.Name}

// Catalog keeps tools in registration order. The first tool registered under
// a name wins. A later tool reusing a reserved name fails with ErrReservedTool.
type Catalog struct {
	tools    map[string]toolhandler.ToolHandler
	specs    map[string]toolhandler.ToolSpec
	order    []string
	reserved map[string]bool
	mtx      sync.RWMutex
}

func (c *Catalog) Register(th toolhandler.ToolHandler) error {
	if th == nil {
		return fmt.Errorf("tool is nil")
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	spec := th.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if len(key) == 0 {
		return fmt.Errorf("tool name is required")
	}

	if _, ok := c.tools[key]; ok {
		if c.reserved[key] {
			return fmt.Errorf("%w: %s", ErrReservedTool, key)
		}
		return fmt.Errorf("%w: %s", ErrDuplicateTool, key)
	}

	c.tools[key] = th
	c.specs[key] = spec
	c.order = append(c.order, key)

	return nil
}

func (c *Catalog) ListSpecs() []toolhandler.ToolSpec {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	specs := make([]toolhandler.ToolSpec, 0, len(c.specs))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}

	return specs
}

func (c *Catalog) Get(name string) (toolhandler.ToolHandler, toolhandler.ToolSpec, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	th, ok := c.tools[key]

	return th, c.specs[key], ok
}

func (c *Catalog) Reserved(name string) bool {
	return c.reserved[strings.ToLower(strings.TrimSpace(name))]
}

func NewCatalog(reserved ...string) *Catalog {
	c := &Catalog{
		tools:    map[string]toolhandler.ToolHandler{},
		specs:    map[string]toolhandler.ToolSpec{},
		order:    []string{},
		reserved: map[string]bool{},
	}

	for _, name := range reserved {
		c.reserved[strings.ToLower(strings.TrimSpace(name))] = true
	}

	return c
}
