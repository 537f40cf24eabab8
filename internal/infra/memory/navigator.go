package memory

import "sync"

// Navigator records every navigation request instead of acting on it.
type Navigator struct {
	mu     sync.Mutex
	routes []string
}

func NewNavigator() *Navigator {
	return &Navigator{}
}

func (n *Navigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

// Routes returns the recorded routes in call order.
func (n *Navigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

// Count returns how many times route was requested.
func (n *Navigator) Count(route string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, r := range n.routes {
		if r == route {
			count++
		}
	}
	return count
}
