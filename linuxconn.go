//go:build !tinygo

package sds011dash

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hjkoskel/listserialports"
	"golang.org/x/sys/unix"
)

const READTIMEOUTDECISEC = 30 //VTIME, SDS011 reports every second in active mode

// LinuxConn is SDS011 on serial port. Uses fixed settings 9600 8N1
type LinuxConn struct {
	deviceportName string
	f              *os.File
	serReader      *bufio.Reader
}

func NewLinuxConn(deviceportName string) *LinuxConn {
	return &LinuxConn{deviceportName: deviceportName}
}

func (p *LinuxConn) IsOpen() bool {
	return p.f != nil
}

func (p *LinuxConn) Close() error {
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	p.serReader = nil
	return err
}

func (p *LinuxConn) ReadByte() (byte, error) {
	if p.serReader == nil {
		return 0, ErrLinkClosed
	}
	b, errRead := p.serReader.ReadByte()
	if errRead != nil {
		if errRead == io.EOF { //VTIME passed without data
			return 0, fmt.Errorf("no data from %v in %v ms", p.deviceportName, READTIMEOUTDECISEC*100)
		}
		return 0, fmt.Errorf("error reading %v err=%w", p.deviceportName, errRead)
	}
	return b, nil
}

// Open must not be called twice. Check IsOpen first
func (p *LinuxConn) Open() error {
	if p.f != nil {
		return fmt.Errorf("serial port %v is already open", p.deviceportName)
	}

	//TESTTED  socat -d -d pty,raw,echo=0 pty,raw,echo=0
	if !strings.HasPrefix(p.deviceportName, "/dev/pts") { //Avoid issues with testing with socat
		portUsedByPids, _, errPortDetect := listserialports.FileIsInUseByPids(p.deviceportName)
		if errPortDetect != nil {
			return fmt.Errorf("serial port error %w", errPortDetect)
		}
		if 0 < len(portUsedByPids) {
			return fmt.Errorf("serial port %v is in use (by PID %#v)", p.deviceportName, portUsedByPids)
		}
	}

	f, errOpen := os.OpenFile(p.deviceportName, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if errOpen != nil {
		return fmt.Errorf("serial device %v open error %w", p.deviceportName, errOpen)
	}

	fd := int(f.Fd())
	t := unix.Termios{ //8N1, raw
		Iflag:  unix.IGNPAR,
		Cflag:  unix.CREAD | unix.CLOCAL | unix.B9600 | unix.CS8,
		Ispeed: unix.B9600,
		Ospeed: unix.B9600,
	}
	t.Cc[unix.VMIN] = 0 //return after VTIME even when nothing came
	t.Cc[unix.VTIME] = READTIMEOUTDECISEC
	if errTermios := unix.IoctlSetTermios(fd, unix.TCSETS, &t); errTermios != nil {
		f.Close()
		return fmt.Errorf("setting termios on %v: %w", p.deviceportName, errTermios)
	}
	if errNonBlock := unix.SetNonblock(fd, false); errNonBlock != nil {
		f.Close()
		return fmt.Errorf("setting blocking mode on %v: %w", p.deviceportName, errNonBlock)
	}

	p.f = f
	p.serReader = bufio.NewReader(f)
	return nil
}
