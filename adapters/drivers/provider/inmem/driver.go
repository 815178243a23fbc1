package inmem

import (
	"fmt"
	"strconv"

	providerdrv "github.com/kompox/tmpcluster/adapters/drivers/provider"
	"github.com/kompox/tmpcluster/domain/model"
)

// DriverName is the registered name of this driver.
const DriverName = "inmem"

// Option keys.
const (
	// OptionAdvanceOnRead ("true"/"false") advances resources on each state read.
	OptionAdvanceOnRead = "advanceOnRead"
)

// driver implements providerdrv.Driver over one Cloud.
type driver struct {
	cloud *Cloud
}

// ID returns the provider identifier.
func (d *driver) ID() string { return DriverName }

func (d *driver) TokenPort() model.TokenPort { return d.cloud }

func (d *driver) RemotePort() model.RemotePort { return d.cloud }

// CloudOf returns the simulated subscription of a driver created by this package.
func CloudOf(d providerdrv.Driver) (*Cloud, bool) {
	v, ok := d.(*driver)
	if !ok {
		return nil, false
	}
	return v.cloud, true
}

// init registers the inmem driver.
func init() {
	providerdrv.Register(DriverName, func(options map[string]string) (providerdrv.Driver, error) {
		advance := false
		if v := options[OptionAdvanceOnRead]; v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("inmem option %s: %w", OptionAdvanceOnRead, err)
			}
			advance = b
		}
		return &driver{cloud: NewCloud(advance)}, nil
	})
}
