package sharepoint

import (
	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// init registers the SharePoint factory with the publisher registry.
func init() {
	endpoint.Register(TemplateID, func(deps endpoint.Dependencies) (endpoint.Publisher, error) {
		return New(deps), nil
	})
}
