package apu

// Duty cycle sequences for pulse channels (8 steps each)
var dutyCycles = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 25% (negated)
}

// Triangle wave sequence (32 steps)
var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// Noise timer periods, indexed by the low 4 bits of $400E
var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// DMC rate table (period between output-unit clocks, in CPU cycles)
var dmcRates = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

// stepPulse steps a pulse channel's timer
func (a *APU) stepPulse(pulse *PulseChannel) {
	if !pulse.Enabled {
		return
	}

	if pulse.Timer > 0 {
		pulse.Timer--
	} else {
		pulse.Timer = pulse.TimerValue
		pulse.Sequence = (pulse.Sequence + 1) % 8
	}
}

// stepTriangle steps the triangle channel's timer. The sequencer only
// advances while both the length and linear counters are nonzero.
func (a *APU) stepTriangle() {
	if !a.Triangle.Enabled {
		return
	}

	if a.Triangle.Timer > 0 {
		a.Triangle.Timer--
	} else {
		a.Triangle.Timer = a.Triangle.TimerValue
		if a.Triangle.Length.Value > 0 && a.Triangle.LinearCounter > 0 {
			a.Triangle.Sequence = (a.Triangle.Sequence + 1) % 32
		}
	}
}

// stepNoise steps the noise channel's timer and LFSR
func (a *APU) stepNoise() {
	if !a.Noise.Enabled {
		return
	}

	if a.Noise.Timer > 0 {
		a.Noise.Timer--
		return
	}
	a.Noise.Timer = a.Noise.TimerValue

	// Feedback is bit 0 XOR bit 6 (mode 1) or bit 0 XOR bit 1 (mode 0),
	// shifted back in at bit 14.
	var bit uint16
	if a.Noise.Mode {
		bit = (a.Noise.ShiftReg & 1) ^ ((a.Noise.ShiftReg >> 6) & 1)
	} else {
		bit = (a.Noise.ShiftReg & 1) ^ ((a.Noise.ShiftReg >> 1) & 1)
	}
	a.Noise.ShiftReg = (a.Noise.ShiftReg >> 1) | (bit << 14)
}

// stepDMC counts the DMC timer down in CPU cycles and clocks the output
// unit each time it expires.
func (a *APU) stepDMC() {
	if !a.DMC.Enabled {
		return
	}

	if a.DMC.Timer > 0 {
		a.DMC.Timer--
		return
	}
	a.DMC.Timer = dmcRates[a.DMC.Rate&0x0F] - 1
	a.clockDMCOutput()
}

// fillDMCBuffer fetches the next sample byte over the CPU bus when the
// one-byte buffer is empty and the sample still has bytes left.
func (a *APU) fillDMCBuffer() {
	if !a.DMC.BufferEmpty || a.DMC.CurrentLength == 0 || a.Memory == nil {
		return
	}

	a.DMC.SampleBuffer = a.Memory.Read(a.DMC.CurrentAddress)
	a.DMC.BufferEmpty = false

	// The fetch rides the CPU bus; 4 stolen cycles is the common-case cost.
	a.StolenCycles += 4

	if a.DMC.CurrentAddress == 0xFFFF {
		a.DMC.CurrentAddress = 0x8000
	} else {
		a.DMC.CurrentAddress++
	}
	a.DMC.CurrentLength--

	if a.DMC.CurrentLength == 0 {
		if a.DMC.Loop {
			a.DMC.CurrentAddress = a.DMC.SampleAddress
			a.DMC.CurrentLength = a.DMC.SampleLength
		} else if a.DMC.IRQEnabled {
			a.dmcIRQPending = true
		}
	}
}

// clockDMCOutput shifts one delta bit out of the sample shift register and
// nudges the 7-bit output level by ±2.
func (a *APU) clockDMCOutput() {
	a.fillDMCBuffer()

	if a.DMC.BitsRemaining == 0 {
		a.DMC.BitsRemaining = 8
		if a.DMC.BufferEmpty {
			a.DMC.Silence = true
		} else {
			a.DMC.Silence = false
			a.DMC.ShiftReg = a.DMC.SampleBuffer
			a.DMC.BufferEmpty = true
		}
	}

	if !a.DMC.Silence {
		if a.DMC.ShiftReg&1 != 0 {
			if a.DMC.LoadCounter <= 125 {
				a.DMC.LoadCounter += 2
			}
		} else if a.DMC.LoadCounter >= 2 {
			a.DMC.LoadCounter -= 2
		}
	}

	a.DMC.ShiftReg >>= 1
	a.DMC.BitsRemaining--
}

// stepEnvelope steps an envelope generator
func (a *APU) stepEnvelope(env *EnvelopeGenerator) {
	if env.Start {
		env.Start = false
		env.Counter = 15
		env.Divider = env.Volume
		return
	}

	if env.Divider > 0 {
		env.Divider--
	} else {
		env.Divider = env.Volume
		if env.Counter > 0 {
			env.Counter--
		} else if env.Loop {
			env.Counter = 15
		}
	}
}

// stepLengthCounter steps a length counter
func (a *APU) stepLengthCounter(lc *LengthCounter) {
	if lc.Enabled && !lc.Halt && lc.Value > 0 {
		lc.Value--
	}
}

// stepSweep steps a sweep unit
func (a *APU) stepSweep(pulse *PulseChannel, sweep *SweepUnit, channel1 bool) {
	if sweep.Reload {
		sweep.Counter = sweep.Period
		sweep.Reload = false
		if sweep.Enabled && sweep.Period == 0 {
			a.performSweep(pulse, sweep, channel1)
		}
	} else if sweep.Counter > 0 {
		sweep.Counter--
	} else {
		sweep.Counter = sweep.Period
		if sweep.Enabled {
			a.performSweep(pulse, sweep, channel1)
		}
	}
}

// performSweep recomputes the pulse period from the sweep's shifted change
// amount. Pulse 1 negates via one's complement, pulse 2 via two's complement.
func (a *APU) performSweep(pulse *PulseChannel, sweep *SweepUnit, channel1 bool) {
	change := pulse.TimerValue >> sweep.Shift
	var targetPeriod uint16

	if sweep.Negate {
		if channel1 {
			targetPeriod = pulse.TimerValue - change - 1
		} else {
			targetPeriod = pulse.TimerValue - change
		}
	} else {
		targetPeriod = pulse.TimerValue + change
	}

	if targetPeriod >= 8 && targetPeriod <= 0x7FF {
		pulse.TimerValue = targetPeriod
	}
}

// getPulseOutput gets the output value for a pulse channel
func (a *APU) getPulseOutput(pulse *PulseChannel) uint8 {
	if !pulse.Enabled || pulse.Length.Value == 0 {
		return 0
	}

	if pulse.TimerValue < 8 || pulse.TimerValue > 0x7FF {
		return 0
	}

	if a.isSweepMuting(pulse, &pulse.Sweep) {
		return 0
	}

	if dutyCycles[pulse.DutyCycle][pulse.Sequence] == 0 {
		return 0
	}

	if pulse.Envelope.Constant {
		return pulse.Volume
	}
	return pulse.Envelope.Counter
}

// isSweepMuting checks if the sweep unit's target period would leave the
// valid range, which silences the channel even between sweep clocks.
func (a *APU) isSweepMuting(pulse *PulseChannel, sweep *SweepUnit) bool {
	if !sweep.Enabled {
		return false
	}

	change := pulse.TimerValue >> sweep.Shift
	var targetPeriod uint16

	if sweep.Negate {
		if change > pulse.TimerValue {
			return true // would underflow
		}
		targetPeriod = pulse.TimerValue - change
	} else {
		targetPeriod = pulse.TimerValue + change
	}

	return targetPeriod < 8 || targetPeriod > 0x7FF
}

// getTriangleOutput gets the output value for the triangle channel
func (a *APU) getTriangleOutput() uint8 {
	if !a.Triangle.Enabled || a.Triangle.Length.Value == 0 || a.Triangle.LinearCounter == 0 {
		return 0
	}

	return triangleSequence[a.Triangle.Sequence]
}

// getNoiseOutput gets the output value for the noise channel
func (a *APU) getNoiseOutput() uint8 {
	if !a.Noise.Enabled || a.Noise.Length.Value == 0 {
		return 0
	}

	// Muted whenever bit 0 of the shift register is set
	if a.Noise.ShiftReg&1 != 0 {
		return 0
	}

	if a.Noise.Envelope.Constant {
		return a.Noise.Volume
	}
	return a.Noise.Envelope.Counter
}

// getDMCOutput gets the output value for the DMC channel
func (a *APU) getDMCOutput() uint8 {
	if !a.DMC.Enabled {
		return 0
	}
	return a.DMC.LoadCounter
}

// mixChannels combines the channel outputs with the standard two-group
// nonlinear formula (pulse group, then triangle/noise/DMC group).
func (a *APU) mixChannels() float32 {
	pulse1 := a.getPulseOutput(&a.Pulse1)
	pulse2 := a.getPulseOutput(&a.Pulse2)
	triangle := a.getTriangleOutput()
	noise := a.getNoiseOutput()
	dmc := a.getDMCOutput()

	pulseSum := pulse1 + pulse2
	var pulseOut float32
	if pulseSum > 0 {
		pulseOut = 95.52 / ((8128.0 / float32(pulseSum)) + 100.0)
	}

	tndSum := float32(triangle)/8227.0 + float32(noise)/12241.0 + float32(dmc)/22638.0
	var tndOut float32
	if tndSum > 0 {
		tndOut = 159.79 / (1.0/(tndSum) + 100.0)
	}

	// The two groups together peak just under 1.0; clamp as a guard.
	output := pulseOut + tndOut
	if output > 1.0 {
		output = 1.0
	} else if output < -1.0 {
		output = -1.0
	}

	return output
}

// stepLinearCounter steps the triangle's linear counter on quarter-frames
func (a *APU) stepLinearCounter() {
	if a.Triangle.ReloadFlag {
		a.Triangle.LinearCounter = a.Triangle.LinearReload
	} else if a.Triangle.LinearCounter > 0 {
		a.Triangle.LinearCounter--
	}

	if !a.Triangle.LinearControl {
		a.Triangle.ReloadFlag = false
	}
}

// frameSequencerStep performs quarter frame and half frame operations
func (a *APU) frameSequencerStep(quarter, half bool) {
	if quarter {
		a.stepEnvelopes()
		a.stepLinearCounter()
	}

	if half {
		a.stepLengthCounters()
		a.stepSweeps()
	}
}
