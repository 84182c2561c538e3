package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/middleware"
	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/services"
	"github.com/fsnd/coffee-shop/utils"
)

// maxBodyBytes bounds request bodies on write endpoints
const maxBodyBytes = 1 << 20

// DrinkService defines the menu operations used by DrinkHandler
type DrinkService interface {
	ListDrinks(ctx context.Context) ([]*models.Drink, error)
	CreateDrink(ctx context.Context, input services.CreateDrinkInput) (*models.Drink, error)
	UpdateDrink(ctx context.Context, id int64, input services.UpdateDrinkInput) (*models.Drink, error)
	DeleteDrink(ctx context.Context, id int64) error
}

// Recipe accepts either a list of ingredients or a single ingredient object
type Recipe []models.Ingredient

// UnmarshalJSON implements json.Unmarshaler
func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one models.Ingredient
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*r = Recipe{one}
		return nil
	}

	var many []models.Ingredient
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

// CreateDrinkRequest is the body of POST /drinks
type CreateDrinkRequest struct {
	Title  string `json:"title"`
	Recipe Recipe `json:"recipe"`
}

// UpdateDrinkRequest is the body of PATCH /drinks/{id}. Omitted fields are left unchanged.
type UpdateDrinkRequest struct {
	Title  *string `json:"title,omitempty"`
	Recipe *Recipe `json:"recipe,omitempty"`
}

// DrinkHandler handles the menu endpoints
type DrinkHandler struct {
	drinks DrinkService
	logger *zap.Logger
}

// NewDrinkHandler creates a new DrinkHandler
func NewDrinkHandler(drinks DrinkService, logger *zap.Logger) *DrinkHandler {
	return &DrinkHandler{
		drinks: drinks,
		logger: logger,
	}
}

// HandleList handles GET /drinks
// Public; ingredient names are omitted.
func (h *DrinkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.drinks.ListDrinks(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeDrinks(w, models.ShortList(drinks))
}

// HandleDetail handles GET /drinks-detail
func (h *DrinkHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.drinks.ListDrinks(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeDrinks(w, models.LongList(drinks))
}

// HandleCreate handles POST /drinks
func (h *DrinkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateDrinkRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Debug("invalid create drink body",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	drink, err := h.drinks.CreateDrink(ctx, services.CreateDrinkInput{
		Title:  req.Title,
		Recipe: req.Recipe,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("drink added to menu",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("subject", subject(ctx)),
		zap.Int64("drink_id", drink.ID))

	h.writeDrinks(w, []models.DrinkLong{drink.Long()})
}

// HandleUpdate handles PATCH /drinks/{id}
func (h *DrinkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.drinkID(w, r)
	if !ok {
		return
	}

	var req UpdateDrinkRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Debug("invalid update drink body",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	input := services.UpdateDrinkInput{Title: req.Title}
	if req.Recipe != nil {
		recipe := []models.Ingredient(*req.Recipe)
		input.Recipe = &recipe
	}

	drink, err := h.drinks.UpdateDrink(ctx, id, input)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeDrinks(w, []models.DrinkLong{drink.Long()})
}

// HandleDelete handles DELETE /drinks/{id}
func (h *DrinkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.drinkID(w, r)
	if !ok {
		return
	}

	if err := h.drinks.DeleteDrink(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("drink removed from menu",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("subject", subject(ctx)),
		zap.Int64("drink_id", id))

	if err := utils.WriteOK(w, map[string]interface{}{"delete": id}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *DrinkHandler) writeDrinks(w http.ResponseWriter, drinks interface{}) {
	if err := utils.WriteOK(w, map[string]interface{}{"drinks": drinks}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// drinkID parses the {id} URL parameter, writing a 400 when it is not a positive integer
func (h *DrinkHandler) drinkID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = utils.WriteBadRequest(w, fmt.Sprintf("Invalid drink id %q", raw), nil)
		return 0, false
	}
	return id, true
}

// decodeBody decodes a single JSON document from the request body
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func subject(ctx context.Context) string {
	if claims := middleware.ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
