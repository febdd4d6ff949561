package controller

import (
	"io"
	"strconv"
	"strings"

	"ai-butler-be/internal/dto"
	"ai-butler-be/internal/pkg/serverutils"
	"ai-butler-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
	Speak(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/chat", c.Chat)
	h.Post("/reset", c.Reset)
	h.Post("/upload", c.Upload)
	h.Post("/transcribe", c.Transcribe)
	h.Post("/speak", c.Speak)
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn completed", res))
}

func (c *assistantController) Reset(ctx *fiber.Ctx) error {
	var req dto.ResetSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Reset(ctx.Context(), req.SessionId); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Session reset", nil))
}

func (c *assistantController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	pages, err := parsePages(ctx.FormValue("pages"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.Upload(ctx.Context(), fileHeader.Filename, data, pages)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document stored", res))
}

func (c *assistantController) Transcribe(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing audio")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	text, err := c.service.Transcribe(ctx.Context(), fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcribed", dto.TranscribeResponse{Text: text}))
}

func (c *assistantController) Speak(ctx *fiber.Ctx) error {
	var req dto.SpeakRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	audio, err := c.service.Synthesize(ctx.Context(), req.Text)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	return ctx.Send(audio)
}

// parsePages parses a comma separated page list ("1,3,5") into ints.
func parsePages(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "pages must be a comma separated list of positive numbers")
		}
		pages = append(pages, n)
	}
	return pages, nil
}
