package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/internal/timeutil"
	"repairshop-backend/pkg/utils"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportBytes  = 10 << 20
)

type ProductHandler struct {
	Service *services.ProductService
	Admin   *services.AdminService
}

func NewProductHandler(service *services.ProductService, admin *services.AdminService) *ProductHandler {
	return &ProductHandler{Service: service, Admin: admin}
}

// List returns the catalog, inactive products included unless active_only is set.
// GET /api/products?search=&active_only=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListProducts(r.Context(), r.URL.Query().Get("search"), boolQuery(r, "active_only"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.Service.CreateProduct(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "product_create", "product", product.ID, "Produit créé: "+product.Name)
	utils.JSON(w, http.StatusCreated, product)
}

// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.Service.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.Service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "product_update", "product", id, "Produit modifié: "+product.Name)
	utils.JSON(w, http.StatusOK, product)
}

// POST /api/products/{id}/deactivate
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// POST /api/products/{id}/activate
func (h *ProductHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *ProductHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.Service.SetActive(r.Context(), id, active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	action, verb := "product_deactivate", "désactivé"
	if active {
		action, verb = "product_activate", "réactivé"
	}
	audit(r, h.Admin, action, "product", id, fmt.Sprintf("Produit %s: %s", verb, product.Name))
	utils.JSON(w, http.StatusOK, product)
}

// AdjustStock applies a signed quantity correction.
// POST /api/products/{id}/stock
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.StockAdjustmentRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.Service.AdjustStock(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "stock_adjust", "product", id, fmt.Sprintf("Stock %s: %+d", product.Name, req.Delta))
	utils.JSON(w, http.StatusOK, product)
}

// GET /api/products/low-stock
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// GET /api/products/barcode/{code}
func (h *ProductHandler) ByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.FindByBarcode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// GET /api/products/export
func (h *ProductHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	filename := fmt.Sprintf("produits_%s.xlsx", timeutil.Now().Format("20060102"))
	utils.Attachment(w, xlsxContentType, filename, data)
}

// Import reads a workbook either as the "file" field of a multipart form or as the raw body.
// POST /api/products/import
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid upload", nil)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Missing file field", nil)
			return
		}
		defer file.Close()
		src = file
	}

	report, err := h.Service.Import(r.Context(), src)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "product_import", "product", 0,
		fmt.Sprintf("Import catalogue: %d créés, %d modifiés, %d rejetés", report.Created, report.Updated, len(report.Rejected)))
	utils.JSON(w, http.StatusOK, report)
}
