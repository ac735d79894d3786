package analyzer

import (
	"github.com/RyanBlaney/sonido-maqam/algorithms/maqam"
	"github.com/RyanBlaney/sonido-maqam/algorithms/seyir"
	"github.com/RyanBlaney/sonido-maqam/logging"
)

type options struct {
	catalog    *maqam.Catalog
	models     *seyir.ModelSet
	classifier seyir.Classifier
	logger     logging.Logger
}

// Option customizes a MaqamAnalyzer
type Option func(*options)

// WithCatalog replaces the built-in jins/maqam catalog
func WithCatalog(catalog *maqam.Catalog) Option {
	return func(o *options) {
		o.catalog = catalog
	}
}

// WithModels supplies the transition models, overriding ModelsPath and the
// built-in models
func WithModels(models *seyir.ModelSet) Option {
	return func(o *options) {
		o.models = models
	}
}

// WithClassifier supplies the probability source fed to fusion
func WithClassifier(classifier seyir.Classifier) Option {
	return func(o *options) {
		o.classifier = classifier
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
