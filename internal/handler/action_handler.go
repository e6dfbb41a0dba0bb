package handler

import (
	"strconv"
	"strings"

	"go-sheet-sales/internal/model"
	"go-sheet-sales/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ActionHandler is the single dispatch endpoint: the action parameter names
// the operation, GET and POST are handled identically, and every response is
// a JSON envelope with success:bool at HTTP 200. Error kinds are not
// distinguished on the wire; the description string is all the caller gets.
type ActionHandler struct {
	recorder service.SaleRecorder
	catalog  service.CatalogService
	sales    service.SalesReader
}

func NewActionHandler(recorder service.SaleRecorder, catalog service.CatalogService, sales service.SalesReader) *ActionHandler {
	return &ActionHandler{recorder: recorder, catalog: catalog, sales: sales}
}

func (h *ActionHandler) Handle(c *fiber.Ctx) error {
	params := collectParams(c)

	switch params["action"] {
	case "recordSale":
		ev, err := saleEventFromParams(params)
		if err != nil {
			return fail(c, err)
		}
		res, err := h.recorder.RecordSale(ev)
		if err != nil {
			return fail(c, err)
		}
		resp := fiber.Map{"success": true, "message": res.Message}
		if res.Timestamp != "" {
			resp["timestamp"] = res.Timestamp
		}
		return c.JSON(resp)

	case "getSales":
		sales, err := h.sales.GetSales()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "sales": sales})

	case "getProducts":
		products, err := h.catalog.GetProducts()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "products": products})

	default:
		return fail(c, &model.UnknownActionError{Action: params["action"]})
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.JSON(fiber.Map{"success": false, "error": err.Error()})
}

// collectParams flattens query string and form body into one key-value map,
// form values winning on overlap.
func collectParams(c *fiber.Ctx) map[string]string {
	params := c.Queries()
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})
	return params
}

// saleEventFromParams builds the typed request at the boundary. Numeric
// fields parse strictly: a non-empty unparsable value is rejected instead of
// being coerced to zero.
func saleEventFromParams(params map[string]string) (*model.SaleEvent, error) {
	ev := &model.SaleEvent{
		ItemName:    params["itemName"],
		BatchNo:     params["batchNo"],
		SalesPerson: params["salesPerson"],
		Remark:      params["remark"],
		Timestamp:   params["timestamp"],
	}

	if raw := strings.TrimSpace(params["saleQty"]); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, model.NewValidationError("Invalid saleQty: %q", raw)
		}
		ev.SaleQty = qty
	}
	if raw := strings.TrimSpace(params["saleRate"]); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, model.NewValidationError("Invalid saleRate: %q", raw)
		}
		ev.SaleRate = rate
	}
	return ev, nil
}
