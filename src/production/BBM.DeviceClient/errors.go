package client

import (
	"context"
	"errors"
	"net"
	"syscall"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// classify maps a transport error to a RemoteError kind
func classify(op string, err error) *bbmmodels.RemoteError {
	var re *bbmmodels.RemoteError
	if errors.As(err, &re) {
		return re
	}

	kind := bbmmodels.RemoteUnknown
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = bbmmodels.RemoteConnectionRefused
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			kind = bbmmodels.RemoteTimeout
		} else {
			kind = bbmmodels.RemoteHostNotFound
		}
	case errors.Is(err, context.DeadlineExceeded):
		kind = bbmmodels.RemoteTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = bbmmodels.RemoteTimeout
	}
	return &bbmmodels.RemoteError{Op: op, Kind: kind, Err: err}
}

func unexpected(op string, status int, err error) *bbmmodels.RemoteError {
	return &bbmmodels.RemoteError{Op: op, Kind: bbmmodels.RemoteUnexpectedResponse, StatusCode: status, Err: err}
}
