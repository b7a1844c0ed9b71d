package fn

import "sync"

// FuncList is a thread-safe list of functions executed in reverse order of registration.
type FuncList struct {
	mutex sync.Mutex
	funcs []func()
}

// AddFunc appends a function to the list.
func (c *FuncList) AddFunc(f func()) {
	if f == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.funcs = append(c.funcs, f)
}

// Execute calls all functions, last added first, and clears the list.
func (c *FuncList) Execute() {
	c.mutex.Lock()
	funcs := c.funcs
	c.funcs = nil
	c.mutex.Unlock()
	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}
