package cgi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
)

var (
	ErrRefused      = errors.New("camera refused the connection")
	ErrUnreachable  = errors.New("camera is unreachable")
	ErrTimeout      = errors.New("camera did not respond in time")
	ErrAuthRejected = errors.New("camera rejected the credentials")
)

type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cgi: %s %s", http.StatusText(e.StatusCode), e.Path)
}

// classify maps transport failures to stable errors, other errors are returned as is
func classify(err error, host string) error {
	var netErr net.Error
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %s", ErrRefused, host)
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return fmt.Errorf("%w: %s", ErrUnreachable, host)
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		return fmt.Errorf("%w: %s", ErrUnreachable, host)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrTimeout, host)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %s", ErrTimeout, host)
	}
	return err
}
