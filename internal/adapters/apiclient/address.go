package apiclient

import (
	"context"
	"log"
	"sync"

	"github.com/fma-academy/registration-service/internal/core/form"
)

type addressSource interface {
	PublicAddress(ctx context.Context) (string, error)
}

// AddressLookup resolves the public address of the device once, in the
// background. Until it resolves, Address reports the loopback default.
type AddressLookup struct {
	mu      sync.RWMutex
	address string
	done    chan struct{}
}

// StartAddressLookup begins the lookup and returns immediately. Failures are
// logged and leave the default in place.
func StartAddressLookup(ctx context.Context, src addressSource) *AddressLookup {
	l := &AddressLookup{done: make(chan struct{})}
	go func() {
		defer close(l.done)
		ip, err := src.PublicAddress(ctx)
		if err != nil {
			log.Printf("apiclient: address lookup failed: %v", err)
			return
		}
		if ip == "" {
			return
		}
		l.mu.Lock()
		l.address = ip
		l.mu.Unlock()
	}()
	return l
}

func (l *AddressLookup) Address() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.address == "" {
		return form.DefaultIPAddress
	}
	return l.address
}

// Done is closed once the lookup has finished, successfully or not.
func (l *AddressLookup) Done() <-chan struct{} { return l.done }
