package convert

import (
	"net/http"

	"github.com/adrianliechti/scanpress/server/api"
)

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	result := &api.ModelList{
		Object: "list",
	}

	for _, id := range h.Models() {
		result.Models = append(result.Models, api.Model{
			ID:     id,
			Object: "model",

			OwnedBy: "scanpress",
		})
	}

	writeJson(w, result)
}
