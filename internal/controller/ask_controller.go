package controller

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const heartbeatInterval = 1 * time.Second

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	AskStream(ctx *fiber.Ctx) error
}

type askController struct {
	askService    service.IAskService
	streamManager *stream.Manager
}

func NewAskController(askService service.IAskService, streamManager *stream.Manager) IAskController {
	return &askController{
		askService:    askService,
		streamManager: streamManager,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ask/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Ask)
	h.Post("/stream", c.AskStream)
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.askService.Ask(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

// AskStream starts a pipeline run and drains its session as server-sent
// events on the same response.
func (c *askController) AskStream(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.askService.StartStream(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	sess, ok := c.streamManager.Lookup(res.SessionId)
	if !ok {
		return fiber.NewError(fiber.StatusInternalServerError, "stream session vanished before drain")
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	sessionId := res.SessionId
	manager := c.streamManager

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer manager.Remove(sessionId)

		heartbeats := 0
	drain:
		for {
			select {
			case event, open := <-sess.Events():
				if !open || event == nil {
					// nil is the session's close sentinel
					break drain
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-time.After(heartbeatInterval):
				heartbeats++
				fmt.Fprintf(w, "data: {\"heartbeat\":true,\"count\":%d}\n\n", heartbeats)
				if err := w.Flush(); err != nil {
					return
				}
			}
		}

		fmt.Fprint(w, "data: [DONE]\n\n")
		w.Flush()
	}))

	return nil
}
