//go:build rp2040 || rp2350

package board

import (
	"device/rp"
	"machine"
	"time"

	"picoos/config"
	"picoos/device"
	"picoos/errcode"
	"picoos/flash"
	"picoos/transport"
	"picoos/x/critical"
)

const (
	tempChannel = 4
	logBaud     = 115200
	adcSpins    = 10000
)

// Boot configures the chip according to cfg.
func Boot(cfg config.Config) (*Board, error) {
	led := machine.Pin(cfg.LED.Pin)
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.Low()

	machine.InitADC()

	port, err := openPort(cfg)
	if err != nil {
		return nil, err
	}

	b := &Board{
		Peripherals: device.Peripherals{
			Watchdog: watchdog{},
			LED:      led,
			Delay:    sleeper{},
			ADC:      tempADC{},
			ROM:      rom{},
			Serial:   port,
		},
		Flash: flash.NewRP2(),
	}
	if cfg.Log.UART != "" {
		u, err := transport.NewUART(cfg.Log.UART, logBaud)
		if err != nil {
			return nil, err
		}
		b.Log = u
	}
	return b, nil
}

func openPort(cfg config.Config) (transport.Port, error) {
	if cfg.Transport.Kind == "usb" {
		return transport.NewUSB(time.Millisecond)
	}
	return transport.NewUART(cfg.Transport.Kind, cfg.Transport.Baud)
}

// Halt parks the CPU. Used after a halt command or a boot failure.
func Halt() {
	for {
		time.Sleep(time.Hour)
	}
}

type watchdog struct{}

func (watchdog) Arm(d time.Duration) error {
	ms := uint32(d / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: ms}); err != nil {
		return err
	}
	return machine.Watchdog.Start()
}

type sleeper struct{}

func (sleeper) Sleep(d time.Duration) { time.Sleep(d) }

type rom struct{}

func (rom) EnterBootloader() { machine.EnterBootloader() }

// tempADC samples the internal temperature sensor channel. The select and
// convert sequence runs with interrupts masked so nothing else can retarget
// the mux between the write and the result.
type tempADC struct{}

func (tempADC) ReadRaw() (uint16, error) {
	var (
		v     uint16
		ready bool
	)
	critical.Do(func() {
		rp.ADC.CS.SetBits(rp.ADC_CS_TS_EN)
		rp.ADC.CS.ReplaceBits(tempChannel<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
		rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
		for i := 0; i < adcSpins; i++ {
			if rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
				ready = true
				break
			}
		}
		v = uint16(rp.ADC.RESULT.Get())
	})
	if !ready {
		return 0, &errcode.E{C: errcode.Error, Op: "adc", Msg: "Temperature sensor timeout"}
	}
	return v, nil
}
