/*
ByteSource
is the sensor side of the poll loop. Poller only opens, closes and reads single bytes.

Different implementations are made for linux serial ports and for the simulated sensor
*/
package sds011dash

import "errors"

var ErrLinkClosed = errors.New("sensor link is not open")

type ByteSource interface {
	Open() error
	Close() error
	IsOpen() bool
	ReadByte() (byte, error) //Blocks until byte is available or read timeout
}
