//go:build !windows

package launcher

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

type Description struct {
	PID            int
	Name           string
	ExecutablePath string
	CommandLine    string
}

func Describe(pid int) (Description, error) {
	ctx := context.Background()
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return Description{}, fmt.Errorf("describe pid %d: %w", pid, err)
	}
	d := Description{PID: pid}
	d.Name, _ = p.NameWithContext(ctx)
	d.ExecutablePath, _ = p.ExeWithContext(ctx)
	d.CommandLine, _ = p.CmdlineWithContext(ctx)
	return d, nil
}
