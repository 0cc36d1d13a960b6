/*
Simulated SDS011

Sensor model is sine + offset + noise for both particle sizes. Every 10 bytes read
is one data reply frame. Connectivity faults allow testing how poll loop survives bad
line conditions.

It is important to notice that simulated sensor does not care about timing, frames are
available immediately.
*/

package sds011dash

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

type SignalModel struct { //Works as floats.. registers report as 10*
	Noise     float64 `yaml:"noise"` //in range [value-noise, value+noise]
	Offset    float64 `yaml:"offset"`
	Period    int64   `yaml:"period"` //In milliseconds, sine period
	Phase     int64   `yaml:"phase"`  //In milliseconds.
	Amplitude float64 `yaml:"amplitude"`
}

type ConnectivityModel struct {
	TxDisconnected     bool `yaml:"tx_disconnected"`     //sensor -> computer line cut, reads fail
	IncompletePackages bool `yaml:"incomplete_packages"` //Not all bytes are coming
	InvalidCRC         bool `yaml:"invalid_crc"`         //Wrong CRC, easy test
}

type SensorModel struct {
	Id             uint16            `yaml:"id"`
	SmallParticles SignalModel       `yaml:"small_particles"`
	LargeParticles SignalModel       `yaml:"large_particles"`
	Connectivity   ConnectivityModel `yaml:"connectivity"`
}

func DefaultSensorModel() SensorModel {
	return SensorModel{
		Id:             0xABCD,
		SmallParticles: SignalModel{Offset: 8, Amplitude: 6, Period: 3600 * 1000, Noise: 1},
		LargeParticles: SignalModel{Offset: 20, Amplitude: 15, Period: 3600 * 1000, Noise: 2},
	}
}

func (p *SignalModel) Calc(t time.Time, rnd *rand.Rand) float64 {
	wave := 0.0
	if p.Period != 0 {
		ms := t.UnixNano() / (1000 * 1000)
		angle := 2.0 * math.Pi * math.Mod(float64(ms+p.Phase), float64(p.Period)) / float64(p.Period)
		wave = math.Sin(angle) * p.Amplitude
	}
	noise := 0.0
	if p.Noise != 0 {
		noise = (rnd.Float64()*2.0 - 1.0) * p.Noise
	}
	return math.Max(0, noise+wave+p.Offset)
}

// Trash signal only if needed
func (p *ConnectivityModel) TrashSignal(pack Packet) []byte {
	arr := pack.ToBytes()
	if p.InvalidCRC {
		arr[len(arr)-2] += 1
	}
	if p.IncompletePackages { //Cut away from end
		arr = arr[0 : len(arr)-4]
	}
	return arr
}

// SimSource is ByteSource without hardware
type SimSource struct {
	Model SensorModel
	now   func() time.Time
	rnd   *rand.Rand
	open  bool
	out   []byte
}

func NewSimSource(model SensorModel, seed int64) *SimSource {
	return &SimSource{
		Model: model,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

func (p *SimSource) Open() error {
	if p.open {
		return fmt.Errorf("simulated sensor already open")
	}
	p.open = true
	p.out = nil
	return nil
}

func (p *SimSource) Close() error {
	p.open = false
	return nil
}

func (p *SimSource) IsOpen() bool {
	return p.open
}

// nextResult is what next generated frame will carry
func (p *SimSource) nextResult() Result {
	tNow := p.now()
	return Result{
		SmallReg: uint16(math.Min(p.Model.SmallParticles.Calc(tNow, p.rnd)*10, math.MaxUint16)),
		LargeReg: uint16(math.Min(p.Model.LargeParticles.Calc(tNow, p.rnd)*10, math.MaxUint16)),
	}
}

func (p *SimSource) ReadByte() (byte, error) {
	if !p.open {
		return 0, ErrLinkClosed
	}
	if p.Model.Connectivity.TxDisconnected {
		return 0, fmt.Errorf("no data from simulated sensor")
	}
	if len(p.out) == 0 {
		res := p.nextResult()
		p.out = p.Model.Connectivity.TrashSignal(NewPacket_DataReply(p.Model.Id, res.SmallReg, res.LargeReg))
	}
	b := p.out[0]
	p.out = p.out[1:]
	return b, nil
}
