package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/itinerary-weather/internal/chat"
	"github.com/i474232898/itinerary-weather/internal/common"
	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/report"
	"github.com/i474232898/itinerary-weather/internal/view"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

var validate = validator.New()

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ForecastService runs and serves itinerary aggregations.
type ForecastService interface {
	Submit(ctx context.Context, it itinerary.Itinerary) (weather.Result, error)
	Current() (weather.Result, bool)
}

// Deps are the components the routes are served from.
type Deps struct {
	Forecasts ForecastService
	Boards    *view.Boards
	Forms     *itinerary.FormRegistry
	Chat      *chat.Service
}

type handler struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := &handler{Deps: deps}
	v1 := app.Group("/api/v1")

	v1.Post("/itinerary", h.submitItinerary)
	v1.Get("/itinerary", h.currentItinerary)
	v1.Patch("/itinerary/cities/:id/view", h.updateView)
	v1.Get("/itinerary/route", h.route)
	v1.Get("/itinerary/export.xlsx", h.export)
	v1.Get("/forecast", h.forecast)

	v1.Post("/forms", h.createForm)
	v1.Get("/forms/:id", h.getForm)
	v1.Post("/forms/:id/slots", h.addSlot)
	v1.Put("/forms/:id/slots/:slot", h.setSlot)
	v1.Delete("/forms/:id/slots", h.removeSlots)
	v1.Post("/forms/:id/submit", h.submitForm)

	v1.Post("/chat", h.newChat)
	v1.Post("/chat/:session", h.chatMessage)
}

// itineraryRequest is the body of POST /itinerary.
type itineraryRequest struct {
	StartCity          string   `json:"startCity" validate:"required"`
	EndCity            string   `json:"endCity" validate:"required"`
	IntermediateCities []string `json:"intermediateCities"`
	WindowDays         int      `json:"windowDays" validate:"oneof=1 3 5"`
}

// itineraryResponse is an installed result together with its current charts.
type itineraryResponse struct {
	Seq       uint64               `json:"seq"`
	Itinerary itinerary.Itinerary  `json:"itinerary"`
	Charts    []view.Chart         `json:"charts"`
	Route     weather.RouteDataset `json:"route"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (h *handler) submitItinerary(c *fiber.Ctx) error {
	var req itineraryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	it, err := itinerary.New(req.StartCity, req.EndCity, req.IntermediateCities, req.WindowDays)
	if err != nil {
		return err
	}
	return h.submit(c, it)
}

func (h *handler) submit(c *fiber.Ctx, it itinerary.Itinerary) error {
	res, err := h.Forecasts.Submit(c.UserContext(), it)
	if err != nil {
		return err
	}
	board, err := h.install(res)
	if err != nil {
		return err
	}
	return c.JSON(renderResult(board))
}

// install builds the board for a freshly submitted result. A newer result
// that reached the boards first wins, and res is reported as superseded.
func (h *handler) install(res weather.Result) (*view.Board, error) {
	board := h.Boards.Install(res)
	if board.Seq() != res.Seq {
		return nil, weather.ErrSuperseded
	}
	return board, nil
}

func (h *handler) currentItinerary(c *fiber.Ctx) error {
	board, err := h.current()
	if err != nil {
		return err
	}
	return c.JSON(renderResult(board))
}

// viewRequest is the body of PATCH /itinerary/cities/:id/view.
type viewRequest struct {
	Metric *string `json:"metric"`
	Days   *int    `json:"days"`
}

func (h *handler) updateView(c *fiber.Ctx) error {
	var req viewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	var change view.Change
	if req.Metric != nil {
		m, err := view.ParseMetric(*req.Metric)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		change.Metric = &m
	}
	change.Days = req.Days

	board, err := h.current()
	if err != nil {
		return err
	}
	chart, err := board.Update(c.Params("id"), change)
	if err != nil {
		return err
	}
	return c.JSON(chart)
}

func (h *handler) route(c *fiber.Ctx) error {
	board, err := h.current()
	if err != nil {
		return err
	}
	return c.JSON(board.Route())
}

func (h *handler) export(c *fiber.Ctx) error {
	board, err := h.current()
	if err != nil {
		return err
	}
	res := board.Result()

	data, err := report.Build(res)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="itinerary-%d.xlsx"`, res.Seq))
	return c.Send(data)
}

// current returns the board of the latest installed result. Everything a
// response renders comes from that one board.
func (h *handler) current() (*view.Board, error) {
	board, ok := h.Boards.Sync(h.Forecasts.Current)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "no itinerary has been submitted yet")
	}
	return board, nil
}

// cityForecast is one element of the GET /forecast response.
type cityForecast struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Forecast weather.ForecastSeries `json:"forecast"`
}

// forecast serves ?cities=a,b,c&days=N, treating the first city as the start
// and the last one as the end of the route.
func (h *handler) forecast(c *fiber.Ctx) error {
	cities := common.SplitList(c.Query("cities"), ",")
	if len(cities) < 2 {
		return fiber.NewError(fiber.StatusBadRequest, "cities must list at least a start and an end city")
	}

	days := itinerary.MaxWindowDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !itinerary.IsWindowOption(n) {
			return fiber.NewError(fiber.StatusBadRequest, "days must be one of 1, 3, 5")
		}
		days = n
	}

	it, err := itinerary.New(cities[0], cities[len(cities)-1], cities[1:len(cities)-1], days)
	if err != nil {
		return err
	}
	res, err := h.Forecasts.Submit(c.UserContext(), it)
	if err != nil {
		return err
	}
	h.Boards.Install(res)

	out := make([]cityForecast, 0, len(res.PerCity))
	for _, ds := range res.PerCity {
		out = append(out, cityForecast{ID: ds.ID, Name: ds.City, Forecast: ds.Series})
	}
	return c.JSON(out)
}

type formResponse struct {
	ID    string           `json:"id"`
	Slots []itinerary.Slot `json:"slots"`
}

func renderForm(f *itinerary.Form) formResponse {
	return formResponse{ID: f.ID, Slots: f.Slots()}
}

func (h *handler) createForm(c *fiber.Ctx) error {
	f := h.Forms.Create()
	return c.Status(fiber.StatusCreated).JSON(renderForm(f))
}

func (h *handler) getForm(c *fiber.Ctx) error {
	f, err := h.Forms.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(renderForm(f))
}

func (h *handler) addSlot(c *fiber.Ctx) error {
	f, err := h.Forms.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(f.Add())
}

type slotRequest struct {
	Value string `json:"value"`
}

func (h *handler) setSlot(c *fiber.Ctx) error {
	var req slotRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	f, err := h.Forms.Get(c.Params("id"))
	if err != nil {
		return err
	}
	if err := f.SetValue(c.Params("slot"), req.Value); err != nil {
		return err
	}
	return c.JSON(renderForm(f))
}

// removeSlotsRequest removes slots either by render-time position or by ID.
type removeSlotsRequest struct {
	Indices []int    `json:"indices" validate:"required_without=IDs"`
	IDs     []string `json:"ids" validate:"required_without=Indices"`
}

func (h *handler) removeSlots(c *fiber.Ctx) error {
	var req removeSlotsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	f, err := h.Forms.Get(c.Params("id"))
	if err != nil {
		return err
	}
	if len(req.Indices) > 0 {
		f.RemoveAt(req.Indices...)
	}
	if len(req.IDs) > 0 {
		f.Remove(req.IDs...)
	}
	return c.JSON(renderForm(f))
}

// formSubmitRequest completes a form's intermediate stops into an itinerary.
type formSubmitRequest struct {
	StartCity  string `json:"startCity" validate:"required"`
	EndCity    string `json:"endCity" validate:"required"`
	WindowDays int    `json:"windowDays" validate:"oneof=1 3 5"`
}

func (h *handler) submitForm(c *fiber.Ctx) error {
	var req formSubmitRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	f, err := h.Forms.Get(c.Params("id"))
	if err != nil {
		return err
	}

	it, err := itinerary.New(req.StartCity, req.EndCity, f.Values(), req.WindowDays)
	if err != nil {
		return err
	}
	return h.submit(c, it)
}

type chatRequest struct {
	Text string `json:"text"`
}

func (h *handler) newChat(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sessionId": chat.NewSessionID()})
}

func (h *handler) chatMessage(c *fiber.Ctx) error {
	var req chatRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	resp, err := h.Chat.Handle(c.UserContext(), c.Params("session"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func renderResult(board *view.Board) itineraryResponse {
	res := board.Result()
	return itineraryResponse{
		Seq:       res.Seq,
		Itinerary: res.Itinerary,
		Charts:    board.Charts(),
		Route:     res.Route,
		CreatedAt: res.CreatedAt,
	}
}

// bindJSON parses the request body into dst and validates it.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("field %s failed on %q", verrs[0].Field(), verrs[0].Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
