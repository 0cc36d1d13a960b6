/*
For unpacking SDS011 frames read from the sensor

Sensor -> PC frame is always 10 bytes
AA C0 <pm2.5 lo> <pm2.5 hi> <pm10 lo> <pm10 hi> <id hi> <id lo> <checksum> AB
*/

package sds011dash

import (
	"errors"
	"fmt"
)

const SDS011FROMSENSORSIZE = 10

const (
	SDS011PACKETSTART = 0xAA
	SDS011PACKETSTOP  = 0xAB
)

const (
	COMMANDID_RESPONSE  = 0xC5
	COMMANDID_DATAREPLY = 0xC0 //First byte in data is not function number
)

// MAXRESYNCSKIP is how much line noise is thrown away while looking for frame start
const MAXRESYNCSKIP = 2 * SDS011FROMSENSORSIZE

var ErrShortFrame = errors.New("short frame")

// Frame is raw capture of one poll cycle
type Frame []byte

/*
DecodeReading picks little endian 16bit register starting from offset.
Register is tenths of µg/m³. Out of range values are passed as is
*/
func DecodeReading(frame Frame, offset int) (float64, error) {
	if offset < 0 || len(frame) < offset+2 {
		return 0, fmt.Errorf("%w: %v bytes, need %v for offset %v", ErrShortFrame, len(frame), offset+2, offset)
	}
	reg := uint16(frame[offset]) | uint16(frame[offset+1])<<8
	return float64(reg) / 10, nil
}

/*
ReadFrame throws away bytes until packet start, then reads rest of the frame.
Link opened in the middle of frame, or noise on line, would otherwise shift every later read.
On error returns what was read so far and number of bytes skipped
*/
func ReadFrame(src ByteSource) (Frame, int, error) {
	skipped := 0
	for {
		b, errRead := src.ReadByte()
		if errRead != nil {
			return nil, skipped, errRead
		}
		if b == SDS011PACKETSTART {
			break
		}
		skipped++
		if MAXRESYNCSKIP <= skipped {
			return nil, skipped, fmt.Errorf("no packet start in %v bytes", skipped)
		}
	}

	frame := make(Frame, 1, SDS011FROMSENSORSIZE)
	frame[0] = SDS011PACKETSTART
	for len(frame) < SDS011FROMSENSORSIZE {
		b, errRead := src.ReadByte()
		if errRead != nil {
			return frame, skipped, errRead
		}
		frame = append(frame, b)
	}
	return frame, skipped, nil
}

type Packet struct {
	CommandID byte
	DeviceID  uint16
	Checksum  byte
	Data      []byte
	Valid     bool //Is ok or not
}

func (p *Packet) CalcChecksum() byte {
	result := byte(p.DeviceID & 0xFF)
	result += byte(p.DeviceID / 256)
	for _, b := range p.Data {
		result += b
	}
	return result
}

func (p *Packet) ChecksumOk() bool {
	return p.Checksum == p.CalcChecksum()
}

func (p *Packet) ToBytes() []byte {
	p.Checksum = p.CalcChecksum()
	result := []byte{SDS011PACKETSTART, p.CommandID}
	result = append(result, p.Data...)
	tail := []byte{byte(p.DeviceID / 256), byte(p.DeviceID & 0xFF), p.Checksum, SDS011PACKETSTOP}
	return append(result, tail...)
}

func (p *Packet) FromBytes(arr []byte) error {
	p.Valid = false
	if len(arr) != SDS011FROMSENSORSIZE {
		return fmt.Errorf("invalid data size %v, expect %v", len(arr), SDS011FROMSENSORSIZE)
	}
	if arr[0] != SDS011PACKETSTART {
		return fmt.Errorf("invalid packet header %X", arr[0])
	}
	if arr[len(arr)-1] != SDS011PACKETSTOP {
		return fmt.Errorf("invalid packet termination %X", arr[len(arr)-1])
	}
	p.CommandID = arr[1]
	if p.CommandID != COMMANDID_RESPONSE && p.CommandID != COMMANDID_DATAREPLY {
		return fmt.Errorf("command ID 0x%X is not supported", p.CommandID)
	}

	p.Checksum = arr[len(arr)-2]
	p.DeviceID = uint16(arr[len(arr)-3]) + uint16(arr[len(arr)-4])<<8
	p.Data = arr[2 : len(arr)-4]

	if !p.ChecksumOk() {
		return fmt.Errorf("checksum error got %X calculated %X", p.Checksum, p.CalcChecksum())
	}
	p.Valid = true
	return nil
}

/*
CheckFrame tells is frame well formed data reply.
Poller only warns about it, decoding happens anyway
*/
func CheckFrame(frame Frame) error {
	var pack Packet
	if err := pack.FromBytes(frame); err != nil {
		return err
	}
	if pack.CommandID != COMMANDID_DATAREPLY {
		return fmt.Errorf("not measurement packet commandid=0x%X", pack.CommandID)
	}
	return nil
}

func NewPacket_DataReply(deviceId uint16, pm2_5 uint16, pm10 uint16) Packet {
	return Packet{
		CommandID: COMMANDID_DATAREPLY,
		DeviceID:  deviceId,
		Data:      []byte{byte(pm2_5 & 0xFF), byte(pm2_5 >> 8), byte(pm10 & 0xFF), byte(pm10 >> 8)},
		Valid:     true,
	}
}

func (p *Packet) GetMeasurement() (Result, error) {
	if !p.Valid {
		return Result{}, fmt.Errorf("invalid packet")
	}
	if p.CommandID != COMMANDID_DATAREPLY {
		return Result{}, fmt.Errorf("not measurement packet commandid=%v", p.CommandID)
	}
	return Result{
		SmallReg: uint16(p.Data[0]) + uint16(p.Data[1])*256,
		LargeReg: uint16(p.Data[2]) + uint16(p.Data[3])*256,
	}, nil
}
