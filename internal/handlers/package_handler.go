package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cabletv-backend/internal/services"
	"cabletv-backend/internal/store"
	"cabletv-backend/pkg/utils"
)

type PackageHandler struct {
	packages *services.PackageService
}

func NewPackageHandler(packages *services.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	packages, err := h.packages.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list packages")
		return
	}
	utils.JSON(w, http.StatusOK, packages)
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid package ID")
		return
	}

	pkg, err := h.packages.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Package not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get package")
		return
	}
	utils.JSON(w, http.StatusOK, pkg)
}
