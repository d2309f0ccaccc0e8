package graph

// ClientInterface is the narrow surface the core broadcasts change
// notifications and event responses through. External
// bindings (OSC/HTTP/GUI) implement it; the core never depends on a
// specific transport.
type ClientInterface interface {
	Response(id int, status Status, message string)
	Put(subjectURI string, properties Properties)
	Delta(subjectURI string, remove []string, add Properties)
	Del(path Path)
	Move(oldPath, newPath Path)
	Connect(srcPortPath, dstPortPath Path)
	Disconnect(srcPortPath, dstPortPath Path)
	DisconnectAll(parent, object Path)
	SetProperty(subjectURI, predicateURI string, value Value)
	Activity(portPath Path)
	BundleBegin()
	BundleEnd()
}

// Broadcaster fans notifications out to every registered client via a
// plain subscription list keyed by client URI.
type Broadcaster struct {
	mu       chanMutex
	clients  map[string]ClientInterface // keyed by client URI
	order    []string
	silenced map[ClientInterface]bool
}

// chanMutex is a channel-rendezvous mutex: it just needs to be safe for
// concurrent Register/Unregister from the pre-process worker while a
// broadcast is in flight on the post-process worker.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	m := make(chanMutex, 1)
	m <- struct{}{}
	return m
}
func (m chanMutex) Lock()   { <-m }
func (m chanMutex) Unlock() { m <- struct{}{} }

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{mu: newChanMutex(), clients: make(map[string]ClientInterface)}
}

func (b *Broadcaster) Register(uri string, c ClientInterface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.clients[uri]; !exists {
		b.order = append(b.order, uri)
	}
	b.clients[uri] = c
}

func (b *Broadcaster) Unregister(uri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, uri)
	for i, u := range b.order {
		if u == uri {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Broadcaster) Client(uri string) (ClientInterface, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.clients[uri]
	return c, ok
}

func (b *Broadcaster) each(fn func(ClientInterface)) {
	b.mu.Lock()
	targets := make([]ClientInterface, 0, len(b.order))
	for _, u := range b.order {
		targets = append(targets, b.clients[u])
	}
	b.mu.Unlock()
	for _, c := range targets {
		fn(c)
	}
}

func (b *Broadcaster) Put(subjectURI string, properties Properties) {
	b.each(func(c ClientInterface) { c.Put(subjectURI, properties) })
}

func (b *Broadcaster) Delta(subjectURI string, remove []string, add Properties) {
	b.each(func(c ClientInterface) { c.Delta(subjectURI, remove, add) })
}

func (b *Broadcaster) Del(path Path) {
	b.each(func(c ClientInterface) { c.Del(path) })
}

func (b *Broadcaster) Move(oldPath, newPath Path) {
	b.each(func(c ClientInterface) { c.Move(oldPath, newPath) })
}

func (b *Broadcaster) Connect(src, dst Path) {
	b.each(func(c ClientInterface) { c.Connect(src, dst) })
}

func (b *Broadcaster) Disconnect(src, dst Path) {
	b.each(func(c ClientInterface) { c.Disconnect(src, dst) })
}

func (b *Broadcaster) DisconnectAll(parent, object Path) {
	b.each(func(c ClientInterface) { c.DisconnectAll(parent, object) })
}

func (b *Broadcaster) SetProperty(subjectURI, predicateURI string, value Value) {
	b.each(func(c ClientInterface) { c.SetProperty(subjectURI, predicateURI, value) })
}

func (b *Broadcaster) Activity(portPath Path) {
	b.each(func(c ClientInterface) { c.Activity(portPath) })
}

// Bundle brackets a sequence of notifications with begin/end markers
// so clients can apply them atomically.
func (b *Broadcaster) Bundle(fn func()) {
	b.each(func(c ClientInterface) { c.BundleBegin() })
	fn()
	b.each(func(c ClientInterface) { c.BundleEnd() })
}

// SetResponsesEnabled toggles whether Respond delivers to a specific
// client. A client that only cares about broadcast state changes, not
// acknowledgement of its own requests, disables its responses once
// after registering.
func (b *Broadcaster) SetResponsesEnabled(c ClientInterface, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if enabled {
		delete(b.silenced, c)
		return
	}
	if b.silenced == nil {
		b.silenced = make(map[ClientInterface]bool)
	}
	b.silenced[c] = true
}

func (b *Broadcaster) Respond(id int, status Status, message string, to ClientInterface) {
	if to == nil {
		return
	}
	b.mu.Lock()
	silenced := b.silenced[to]
	b.mu.Unlock()
	if silenced {
		return
	}
	to.Response(id, status, message)
}
