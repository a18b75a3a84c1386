package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/usecases"
)

const defaultNearbyRadius = 500.0

func listingFilter(c *fiber.Ctx) (domain.ListingFilter, error) {
	return domain.ParseListingFilter(c.Query("category"))
}

// ---- Properties ----

// ListPropertiesHandler returns the catalog in catalog order, optionally filtered by category.
func ListPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := listingFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		points, err := deps.Properties.List(c.UserContext(), filter)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, points))
	}
}

// NearbyPropertiesHandler returns listings within a radius of a point, closest first.
func NearbyPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		center := domain.Coordinate{
			Latitude:  c.QueryFloat("lat", 0),
			Longitude: c.QueryFloat("lon", 0),
		}
		radius := c.QueryFloat("radius", defaultNearbyRadius)
		filter, err := listingFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		nearby, err := deps.Properties.FindNearby(c.UserContext(), center, radius, filter)
		if err != nil {
			return errFromDomain(c, err)
		}
		if nearby == nil {
			nearby = []domain.NearbyPoint{}
		}

		return c.JSON(nearby)
	}
}

// GetPropertyHandler returns a single listing by ID.
func GetPropertyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "property id is required")
		}
		p, err := deps.Properties.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

// ---- Viewports ----

type boundsRequest struct {
	South *float64 `json:"south"`
	North *float64 `json:"north"`
	West  *float64 `json:"west"`
	East  *float64 `json:"east"`
}

type radiusRequest struct {
	RadiusMeters float64 `json:"radius_meters"`
}

type observerRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type zoomRequest struct {
	Action string  `json:"action"` // in, out, reset, set
	Level  float64 `json:"level"`
}

// ListViewportsHandler returns a snapshot of every viewport.
func ListViewportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Viewports.List())
	}
}

// GetViewportHandler returns the current snapshot of one viewport.
func GetViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Viewports.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// SetBoundsHandler replaces the bounding box of a viewport.
func SetBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req boundsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.South == nil || req.North == nil || req.West == nil || req.East == nil {
			return errBadRequest(c, "south, north, west and east are required")
		}
		box := domain.BoundingBox{South: *req.South, North: *req.North, West: *req.West, East: *req.East}
		snap, err := deps.Viewports.SetBounds(c.Params("id"), box)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// SetRadiusHandler changes the proximity radius of a viewport.
func SetRadiusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req radiusRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		snap, err := deps.Viewports.SetRadius(c.Params("id"), req.RadiusMeters)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// FeedObserverHandler places the simulated observer of a viewport.
func FeedObserverHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req observerRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lon == nil {
			return errBadRequest(c, "lat and lon are required")
		}
		snap, err := deps.Viewports.FeedObserver(c.Params("id"), domain.Coordinate{Latitude: *req.Lat, Longitude: *req.Lon})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// MoveHandler steps the simulated observer one step in a compass direction.
func MoveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req moveRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		dir, err := domain.ParseDirection(req.Direction)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		snap, err := deps.Viewports.Move(c.Params("id"), dir)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// SetModeHandler switches a viewport between simulated and live positioning.
// A failed switch to live answers 503 with the viewport still simulated.
func SetModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req modeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		mode, err := domain.ParseMode(req.Mode)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		snap, err := deps.Viewports.SwitchMode(c.UserContext(), c.Params("id"), mode)
		if err != nil {
			deps.logger().Warn("mode switch failed", "viewport", c.Params("id"), "mode", mode, "error", err)
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// ZoomHandler applies a zoom control to a viewport.
func ZoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req zoomRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		snap, err := deps.Viewports.Zoom(c.Params("id"), usecases.ZoomAction(req.Action), req.Level)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// ViewportPointsHandler returns the projected points of a viewport.
func ViewportPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := listingFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		points, err := deps.Viewports.Points(c.Params("id"), filter)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(points)
	}
}

// ReloadPointsHandler reloads the catalog into every viewport.
func ReloadPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := deps.Viewports.ReloadPoints(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"points": n})
	}
}
