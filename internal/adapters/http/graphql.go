package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/usecases"
)

func asPoint(src any) (domain.PointOfInterest, bool) {
	switch p := src.(type) {
	case domain.PointOfInterest:
		return p, true
	case *domain.PointOfInterest:
		if p != nil {
			return *p, true
		}
	}
	return domain.PointOfInterest{}, false
}

func pointField(get func(domain.PointOfInterest) any) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			poi, ok := asPoint(p.Source)
			if !ok {
				return nil, nil
			}
			return get(poi), nil
		},
	}
}

func proximityField(get func(domain.ProximityState) any, t graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			s, ok := p.Source.(domain.ProximityState)
			if !ok || !s.Found() {
				return nil, nil
			}
			return get(s), nil
		},
	}
}

func categoryArg() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.FilterAll)}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScreenPosition",
		Fields: graphql.Fields{
			"top":  &graphql.Field{Type: graphql.Float},
			"left": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"south": &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
		},
	})

	propertyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Property",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: coordinateType},
			"category": pointField(func(p domain.PointOfInterest) any { return string(p.EffectiveCategory()) }),
			"price":    pointField(func(p domain.PointOfInterest) any { return p.Price() }),
			"details":  pointField(func(p domain.PointOfInterest) any { return p.Details() }),
			"image":    pointField(func(p domain.PointOfInterest) any { return p.Image() }),
		},
	})

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyProperty",
		Fields: graphql.Fields{
			"point":           &graphql.Field{Type: propertyType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"distance_miles":  &graphql.Field{Type: graphql.Float},
		},
	})

	proximityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Proximity",
		Fields: graphql.Fields{
			"nearest_id":      proximityField(func(s domain.ProximityState) any { return s.NearestID }, graphql.String),
			"distance_meters": proximityField(func(s domain.ProximityState) any { return s.DistanceMeters }, graphql.Float),
			"distance_miles":  proximityField(func(s domain.ProximityState) any { return s.DistanceMiles() }, graphql.Float),
		},
	})

	projectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PointProjection",
		Fields: graphql.Fields{
			"point":           &graphql.Field{Type: propertyType},
			"position":        &graphql.Field{Type: positionType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"distance_miles":  &graphql.Field{Type: graphql.Float},
			"nearest":         &graphql.Field{Type: graphql.Boolean},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"bounds":            &graphql.Field{Type: boundsType},
			"radius_meters":     &graphql.Field{Type: graphql.Float},
			"zoom":              &graphql.Field{Type: graphql.Float},
			"inverse_scale":     &graphql.Field{Type: graphql.Float},
			"pan_enabled":       &graphql.Field{Type: graphql.Boolean},
			"mode":              &graphql.Field{Type: graphql.String},
			"observer":          &graphql.Field{Type: coordinateType},
			"observer_position": &graphql.Field{Type: positionType},
			"proximity":         &graphql.Field{Type: proximityType},
			"point_count":       &graphql.Field{Type: graphql.Int},
		},
	})

	viewportArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"properties": &graphql.Field{
				Type:        graphql.NewList(propertyType),
				Description: "List listings in catalog order",
				Args:        graphql.FieldConfigArgument{"category": categoryArg()},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					filter, err := domain.ParseListingFilter(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Properties.List(p.Context, filter)
				},
			},
			"property": &graphql.Field{
				Type:        propertyType,
				Description: "Get a listing by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Properties.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"propertiesNearby": &graphql.Field{
				Type:        graphql.NewList(nearbyType),
				Description: "Listings within a radius of a point, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":   &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: defaultNearbyRadius},
					"category": categoryArg(),
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					filter, err := domain.ParseListingFilter(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					center := domain.Coordinate{Latitude: p.Args["lat"].(float64), Longitude: p.Args["lon"].(float64)}
					return deps.Properties.FindNearby(p.Context, center, p.Args["radius"].(float64), filter)
				},
			},
			"viewports": &graphql.Field{
				Type:        graphql.NewList(viewportType),
				Description: "Snapshots of every viewport",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Viewports.List(), nil
				},
			},
			"viewport": &graphql.Field{
				Type:        viewportType,
				Description: "Snapshot of one viewport",
				Args:        graphql.FieldConfigArgument{"id": viewportArg},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Viewports.Get(p.Args["id"].(string))
				},
			},
			"viewportPoints": &graphql.Field{
				Type:        graphql.NewList(projectionType),
				Description: "Projected points of a viewport",
				Args:        graphql.FieldConfigArgument{"id": viewportArg, "category": categoryArg()},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					filter, err := domain.ParseListingFilter(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Viewports.Points(p.Args["id"].(string), filter)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"moveObserver": &graphql.Field{
				Type: viewportType,
				Args: graphql.FieldConfigArgument{
					"id":        viewportArg,
					"direction": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					dir, err := domain.ParseDirection(p.Args["direction"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Viewports.Move(p.Args["id"].(string), dir)
				},
			},
			"placeObserver": &graphql.Field{
				Type: viewportType,
				Args: graphql.FieldConfigArgument{
					"id":  viewportArg,
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					c := domain.Coordinate{Latitude: p.Args["lat"].(float64), Longitude: p.Args["lon"].(float64)}
					return deps.Viewports.FeedObserver(p.Args["id"].(string), c)
				},
			},
			"setRadius": &graphql.Field{
				Type: viewportType,
				Args: graphql.FieldConfigArgument{
					"id":            viewportArg,
					"radius_meters": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Viewports.SetRadius(p.Args["id"].(string), p.Args["radius_meters"].(float64))
				},
			},
			"zoom": &graphql.Field{
				Type: viewportType,
				Args: graphql.FieldConfigArgument{
					"id":     viewportArg,
					"action": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"level":  &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					action := usecases.ZoomAction(p.Args["action"].(string))
					return deps.Viewports.Zoom(p.Args["id"].(string), action, p.Args["level"].(float64))
				},
			},
			"switchMode": &graphql.Field{
				Type: viewportType,
				Args: graphql.FieldConfigArgument{
					"id":   viewportArg,
					"mode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					mode, err := domain.ParseMode(p.Args["mode"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Viewports.SwitchMode(p.Context, p.Args["id"].(string), mode)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
