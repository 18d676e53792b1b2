// Package sse manages Server-Sent Events clients for live reload and theme
// change notifications.
package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quietfold/the-journal/internal/model"
)

type Client struct {
	ID  uuid.UUID
	Msg chan string

	// Slug scopes reload events; empty means the client only receives
	// site-wide broadcasts.
	Slug model.Slug
}

func NewClient(slug model.Slug) *Client {
	return &Client{
		ID:   uuid.New(),
		Msg:  make(chan string),
		Slug: slug,
	}
}

type Clients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewClients() *Clients {
	return &Clients{
		clients: make(map[*Client]bool),
	}
}

func (s *Clients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *Clients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
	close(client.Msg)
}

// Broadcast sends msg to every client watching slug.
func (s *Clients) Broadcast(slug model.Slug, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.Slug == slug {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

// BroadcastAll sends msg to every connected client.
func (s *Clients) BroadcastAll(msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		select {
		case client.Msg <- msg:
		default:
		}
	}
}
