package tracking

import (
	"context"

	"github.com/safetrail/safetrail/internal/client/gateway"
	"github.com/safetrail/safetrail/internal/model"
)

// GatewayReporter pushes location fixes to PUT /tourist/location. The
// tourist id is resolved per report so a fresh login is picked up without
// rebuilding the reporter.
type GatewayReporter struct {
	gw        *gateway.Gateway
	touristID func() string
}

// NewGatewayReporter wraps gw as a Reporter. touristID supplies the id of the
// signed-in tourist and may return "" when nobody is signed in.
func NewGatewayReporter(gw *gateway.Gateway, touristID func() string) *GatewayReporter {
	return &GatewayReporter{gw: gw, touristID: touristID}
}

// ReportLocation sends the coordinate to the backend.
func (r *GatewayReporter) ReportLocation(ctx context.Context, coord model.Coordinate) error {
	update := model.LocationUpdate{
		TouristID: r.touristID(),
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
	}
	return r.gw.Put(ctx, "/tourist/location", update, nil)
}
