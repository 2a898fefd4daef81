package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/pkg/serverutils"
	"github.com/barnabasli/alexandria/internal/service"
	"github.com/barnabasli/alexandria/pkg/rag/stream"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/query/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":organizationId", c.Stream)
}

// Stream answers a question over SSE. Precondition failures (membership,
// empty corpus, bad input) surface as normal JSON errors before the
// stream opens; once streaming starts, failures arrive as error frames.
func (c *queryController) Stream(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}

	organizationId, err := uuid.Parse(ctx.Params("organizationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid organization id")
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The fiber request context dies with the handler, so the stream
	// writer gets its own cancelable context tied to connection close.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.queryService.StreamQuery(streamCtx, userId, organizationId, req.Question)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for ev := range events {
			if ev.Type == stream.EventDone {
				fmt.Fprint(w, "data: [DONE]\n\n")
				w.Flush()
				return
			}

			frame, err := json.Marshal(payloadFor(ev))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", frame)
			if err := w.Flush(); err != nil {
				// Client went away. Cancel so the pipeline stops working
				// for nobody.
				return
			}
		}
	}))

	return nil
}

func payloadFor(ev stream.Event) dto.QueryStreamPayload {
	switch ev.Type {
	case stream.EventThinking:
		return dto.QueryStreamPayload{Answer: ev.Text, Thinking: boolPtr(true)}
	case stream.EventAnswerFragment:
		payload := dto.QueryStreamPayload{Answer: ev.Text}
		if ev.InsufficientEvidence {
			payload.InsufficientInfo = boolPtr(true)
		}
		return payload
	case stream.EventSourceList:
		return dto.QueryStreamPayload{Sources: ev.Citations}
	case stream.EventEnrichedSources:
		return dto.QueryStreamPayload{EnhancedSources: ev.Enriched}
	case stream.EventError:
		return dto.QueryStreamPayload{Error: ev.Text}
	default:
		return dto.QueryStreamPayload{}
	}
}

func boolPtr(b bool) *bool {
	return &b
}
