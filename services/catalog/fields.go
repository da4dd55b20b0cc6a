package catalog

import (
	"fmt"

	"verdebot/models"
)

// fieldKind drives parsing and validity rules per field.
type fieldKind int

const (
	kindInt fieldKind = iota
	kindHeight
	kindAccess
	kindSize
	kindTriState
	kindText
)

var fieldKinds = map[string]fieldKind{
	models.FieldLengthM:   kindInt,
	models.FieldAreaM2:    kindInt,
	models.FieldCount:     kindInt,
	models.FieldHeightM:   kindHeight,
	models.FieldAccess:    kindAccess,
	models.FieldSize:      kindSize,
	models.FieldWaste:     kindTriState,
	models.FieldObstacles: kindTriState,
	models.FieldParking:   kindTriState,
	models.FieldSlope:     kindTriState,
	models.FieldEdges:     kindTriState,
	models.FieldNotes:     kindText,
	models.FieldPlant:     kindText,
	models.FieldProblem:   kindText,
	models.FieldVolume:    kindText,
}

// requiredFields lists, in asking order, what each service needs before
// it can be estimated.
var requiredFields = map[models.ServiceType][]string{
	models.ServiceHedgeTrim: {
		models.FieldLengthM, models.FieldHeightM, models.FieldAccess,
		models.FieldWaste, models.FieldObstacles,
	},
	models.ServiceTreePrune: {
		models.FieldCount, models.FieldSize, models.FieldHeightM,
		models.FieldAccess, models.FieldWaste,
	},
	models.ServiceRopePrune: {
		models.FieldCount, models.FieldHeightM, models.FieldAccess,
		models.FieldWaste,
	},
	models.ServiceLawnMow: {
		models.FieldAreaM2, models.FieldSlope, models.FieldEdges,
		models.FieldWaste,
	},
	models.ServiceCleanup: {
		models.FieldAreaM2, models.FieldVolume, models.FieldAccess,
		models.FieldWaste,
	},
	models.ServiceLeafCollect: {
		models.FieldAreaM2, models.FieldParking, models.FieldWaste,
	},
	models.ServicePestTreat: {
		models.FieldPlant, models.FieldProblem, models.FieldCount,
	},
	models.ServiceWasteDisposal: {
		models.FieldVolume, models.FieldAccess, models.FieldParking,
	},
}

// questions holds prompt overrides keyed by service then field.
var questions = map[models.ServiceType]map[string]string{
	models.ServiceHedgeTrim: {
		models.FieldLengthM: "How many meters of hedge need trimming?",
		models.FieldHeightM: "How tall is the hedge, roughly, in meters?",
	},
	models.ServiceTreePrune: {
		models.FieldCount:   "How many trees need pruning?",
		models.FieldHeightM: "How tall is the tallest tree, in meters?",
		models.FieldSize:    "Are the trees small, medium or large?",
	},
	models.ServiceRopePrune: {
		models.FieldCount:   "How many trees need rope-access pruning?",
		models.FieldHeightM: "How tall are the trees, in meters?",
	},
	models.ServiceLawnMow: {
		models.FieldAreaM2: "How big is the lawn, in square meters?",
	},
	models.ServiceCleanup: {
		models.FieldAreaM2: "How big is the area to clean up, in square meters?",
		models.FieldVolume: "How much material is there to clear (e.g. a few bags, a trailer load)?",
	},
	models.ServiceLeafCollect: {
		models.FieldAreaM2: "Over what area should we collect leaves, in square meters?",
	},
	models.ServicePestTreat: {
		models.FieldPlant:   "Which plant or tree needs treatment?",
		models.FieldProblem: "What problem have you noticed (pests, fungus, discoloring)?",
		models.FieldCount:   "How many plants are affected?",
	},
	models.ServiceWasteDisposal: {
		models.FieldVolume: "How much green waste is there (e.g. bags, cubic meters)?",
	},
}

// genericQuestions covers fields whose wording does not depend on the service.
var genericQuestions = map[string]string{
	models.FieldAccess:    "Is access to the area easy, medium or hard?",
	models.FieldWaste:     "Should we take the green waste away? (yes/no)",
	models.FieldObstacles: "Are there obstacles around, like fences or cables? (yes/no)",
	models.FieldParking:   "Is there parking close to the work area? (yes/no)",
	models.FieldSlope:     "Is the ground sloped? (yes/no)",
	models.FieldEdges:     "Do the edges need trimming too? (yes/no)",
	models.FieldNotes:     "Anything else we should know?",
}

// RequiredFields returns the ordered checklist for a service. The order
// defines the question order.
func RequiredFields(service models.ServiceType) []string {
	return requiredFields[service]
}

// QuestionFor returns the prompt text for a (service, field) pair.
func QuestionFor(service models.ServiceType, field string) string {
	if m, ok := questions[service]; ok {
		if q, ok := m[field]; ok {
			return q
		}
	}
	if q, ok := genericQuestions[field]; ok {
		return q
	}
	return fmt.Sprintf("Could you tell me the %s for the %s?", field, service)
}
