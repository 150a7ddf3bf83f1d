package sink

import (
	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

const (
	CodeEndpointUnreachable = "E_ENDPOINT_UNREACHABLE"
	CodeAuthInvalid         = "E_AUTH_INVALID"
	CodeBucketNotFound      = "E_BUCKET_NOT_FOUND"
	CodeObjectNotFound      = "E_OBJECT_NOT_FOUND"
	CodePermissionDenied    = "E_PERMISSION_DENIED"
	CodeTimeout             = "E_TIMEOUT"
	CodeWriteFailed         = endpoint.CodeSinkWrite
)

func wrapError(code string, retryable bool, err error) *endpoint.Error {
	return endpoint.WrapError(code, retryable, err)
}
