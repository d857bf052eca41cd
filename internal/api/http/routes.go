// Package httpapi wires the HTTP handlers into the Fiber app.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/nunatech/sila/internal/astro"
	"github.com/nunatech/sila/internal/geomag"
	"github.com/nunatech/sila/internal/seaice"
	"github.com/nunatech/sila/internal/weather"
)

var validate = validator.New()

// Deps are the services the handlers call into.
type Deps struct {
	Service *weather.Service
	Geomag  *geomag.Client
	SeaIce  *seaice.Estimator
}

// RegisterRoutes wires the API handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"locations": deps.Service.Locations()})
	})

	v1.Get("/weather/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		force := c.QueryBool("force")

		res, err := deps.Service.FetchByID(c.Context(), id, force)
		if err != nil {
			if errors.Is(err, weather.ErrUnknownLocation) {
				return fiber.NewError(fiber.StatusNotFound, "unknown location id")
			}
			var fe *weather.FetchError
			if errors.As(err, &fe) {
				return fiber.NewError(fiber.StatusServiceUnavailable, fe.Message())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(res)
	})

	v1.Get("/astro/sun", func(c *fiber.Ctx) error {
		var q coordQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(astro.ComputeSunTimes(q.Lat, q.Lon, q.date))
	})

	v1.Get("/astro/aurora", func(c *fiber.Ctx) error {
		var q auroraQuery
		if err := q.bind(c, deps.Service); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()
		kp := deps.Geomag.LatestKpOrDefault(ctx)

		return c.JSON(fiber.Map{
			"kpIndex":            kp,
			"cloudCoverPercent":  q.Cloud,
			"probabilityPercent": astro.AuroraProbability(kp, q.Lat, q.Cloud),
		})
	})

	v1.Get("/seaice", func(c *fiber.Ctx) error {
		var q coordQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.SeaIce.Estimate(q.Lat, q.Lon, q.date))
	})
}

// coordQuery holds query parameters for the point-in-time estimators.
type coordQuery struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Date string
	date time.Time
}

func (q *coordQuery) bind(c *fiber.Ctx) error {
	q.Lat = c.QueryFloat("lat")
	q.Lon = c.QueryFloat("lon")
	q.Date = c.Query("date")

	if c.Query("lat") == "" || c.Query("lon") == "" {
		return errors.New("lat and lon query parameters are required")
	}
	if err := validate.Struct(q); err != nil {
		return err
	}

	if q.Date == "" {
		q.date = time.Now()
		return nil
	}
	d, err := time.Parse(time.DateOnly, q.Date)
	if err != nil {
		return errors.New("invalid date; use YYYY-MM-DD")
	}
	q.date = d
	return nil
}

// auroraQuery accepts either a configured location id or raw coordinates,
// plus an optional cloud-cover override.
type auroraQuery struct {
	Lat   float64 `validate:"gte=-90,lte=90"`
	Cloud float64 `validate:"gte=0,lte=100"`
}

func (q *auroraQuery) bind(c *fiber.Ctx, svc *weather.Service) error {
	if id := c.Query("id"); id != "" {
		loc, ok := svc.LocationByID(id)
		if !ok {
			return errors.New("unknown location id")
		}
		q.Lat = loc.Latitude
	} else if c.Query("lat") != "" {
		q.Lat = c.QueryFloat("lat")
	} else {
		return errors.New("id or lat query parameter is required")
	}

	q.Cloud = c.QueryFloat("cloud")
	return validate.Struct(q)
}
