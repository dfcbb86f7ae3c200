package broadcast

import (
	"context"
	"sync"
)

// Hub 进程内的广播总线。同一个 Hub 上的多个 Channel 互为不同的上下文。
//
// 每个订阅有独立的投递协程和无界队列，Publish 从不阻塞在订阅者上，
// 同一订阅内保持发布顺序。
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*mailbox]struct{}
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*mailbox]struct{})}
}

func (h *Hub) name() string { return DriverMemory }

func (h *Hub) topic(key string) string { return key }

func (h *Hub) publish(_ context.Context, topic string, data []byte) error {
	h.mu.RLock()
	boxes := make([]*mailbox, 0, len(h.subs[topic]))
	for mb := range h.subs[topic] {
		boxes = append(boxes, mb)
	}
	h.mu.RUnlock()

	for _, mb := range boxes {
		mb.push(data)
	}
	return nil
}

func (h *Hub) subscribe(_ context.Context, topic string, deliver func([]byte)) (func() error, error) {
	mb := newMailbox(deliver)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*mailbox]struct{})
	}
	h.subs[topic][mb] = struct{}{}
	h.mu.Unlock()

	go mb.loop()

	return func() error {
		h.mu.Lock()
		delete(h.subs[topic], mb)
		if len(h.subs[topic]) == 0 {
			delete(h.subs, topic)
		}
		h.mu.Unlock()
		mb.close()
		return nil
	}, nil
}

// Subscribers 返回 key 上的订阅数
func (h *Hub) Subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}

type mailbox struct {
	deliver func([]byte)

	mu     sync.Mutex
	queue  [][]byte
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newMailbox(deliver func([]byte)) *mailbox {
	return &mailbox{
		deliver: deliver,
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (m *mailbox) push(data []byte) {
	m.mu.Lock()
	m.queue = append(m.queue, data)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) loop() {
	for {
		select {
		case <-m.done:
			return
		case <-m.signal:
		}
		for {
			m.mu.Lock()
			if len(m.queue) == 0 {
				m.mu.Unlock()
				break
			}
			data := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()

			select {
			case <-m.done:
				return
			default:
			}
			m.deliver(data)
		}
	}
}

func (m *mailbox) close() {
	m.once.Do(func() { close(m.done) })
}
