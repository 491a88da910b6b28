package birch

import "errors"

var (
	// ErrSingularMatrix is returned by Matrix.TryInvert for a matrix with a
	// zero or non-finite determinant.
	ErrSingularMatrix = errors.New("birch: matrix is not invertible")

	// ErrPipelineExists is returned when adding a pipeline under a name that
	// is already registered.
	ErrPipelineExists = errors.New("birch: pipeline already registered")

	// ErrPipelineNotFound is returned when a pipeline name is not registered.
	ErrPipelineNotFound = errors.New("birch: pipeline not found")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("birch: invalid config")

	// ErrTextureExists is returned when adding a texture under a key that is
	// already registered.
	ErrTextureExists = errors.New("birch: texture already exists")

	// ErrTextureNotFound is returned when a texture key is not registered.
	ErrTextureNotFound = errors.New("birch: texture not found")
)
