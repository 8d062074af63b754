package handler

import (
	"net/http"
	"strings"

	"voyara/pkg/model"
)

// Identity headers set by the upstream auth gateway. The engine trusts
// them as-is; this service never re-derives identity.
const (
	HeaderUserID         = "X-User-ID"
	HeaderUserRole       = "X-User-Role"
	HeaderOwnedResources = "X-Owned-Resources"
)

func actorFromRequest(r *http.Request) model.Actor {
	actor := model.Actor{
		UserID: strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Role:   model.Role(strings.TrimSpace(r.Header.Get(HeaderUserRole))),
	}
	if actor.Role == "" {
		actor.Role = model.RoleCustomer
	}

	if owned := r.Header.Get(HeaderOwnedResources); owned != "" {
		for _, id := range strings.Split(owned, ",") {
			if id = strings.TrimSpace(id); id != "" {
				actor.OwnedResourceIDs = append(actor.OwnedResourceIDs, id)
			}
		}
	}
	return actor
}
