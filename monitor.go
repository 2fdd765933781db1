package main

import (
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats je snímek spotřeby samotného simulátoru.
type ProcessStats struct {
	// CPU: vytížení v procentech jednoho jádra od posledního měření.
	CPU float64

	// RSSMB: fyzická paměť procesu (Resident Set Size) v MB.
	RSSMB float64
}

// ProcessMonitor měří vlastní proces přes gopsutil.
// Sample volá jen displej, proto nepotřebuje zámek.
type ProcessMonitor struct {
	proc   *process.Process
	logger *slog.Logger
}

// NewProcessMonitor otevře handle na aktuální proces.
func NewProcessMonitor(logger *slog.Logger) (*ProcessMonitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ProcessMonitor{proc: p, logger: logger}, nil
}

// Sample vrátí aktuální statistiky. Chyby logujeme a vracíme nulové hodnoty,
// chyba CPU nesmí zastavit měření RAM.
func (m *ProcessMonitor) Sample() ProcessStats {
	var stats ProcessStats

	// Interval 0 = rozdíl od předchozího volání, první volání vrací 0.
	if cpu, err := m.proc.Percent(0); err == nil {
		stats.CPU = cpu
	} else {
		m.logger.Debug("Chyba při čtení CPU statistik", "error", err)
	}

	if mem, err := m.proc.MemoryInfo(); err == nil {
		stats.RSSMB = float64(mem.RSS) / 1024.0 / 1024.0
	} else {
		m.logger.Debug("Chyba při čtení RAM statistik", "error", err)
	}
	return stats
}
