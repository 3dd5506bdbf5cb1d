package recommend

import (
	"testing"

	"go.viam.com/test"
)

func TestGetKnownDisease(t *testing.T) {
	advice, err := Get("leaf", "Early Blight", 0.9)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, advice.Disease, test.ShouldEqual, "Early Blight")
	test.That(t, advice.PlantPart, test.ShouldEqual, "leaf")
	test.That(t, advice.Description, test.ShouldNotBeEmpty)
	test.That(t, advice.CausalAgent, test.ShouldNotBeEmpty)
	test.That(t, len(advice.Immediate), test.ShouldBeGreaterThan, 0)
	test.That(t, len(advice.Prevention), test.ShouldBeGreaterThan, 0)
	test.That(t, len(advice.WhenToSeekHelp), test.ShouldBeGreaterThan, 0)
	test.That(t, advice.Reassessment, test.ShouldNotBeEmpty)
}

func TestGetHealthyPerPart(t *testing.T) {
	for _, part := range []string{"fruit", "leaf", "stem"} {
		advice, err := Get(part, "Healthy", 0.95)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, advice.Disease, test.ShouldEqual, "Healthy")
		test.That(t, len(advice.Immediate), test.ShouldBeGreaterThan, 0)
	}
}

func TestGetUnknownFallsBack(t *testing.T) {
	advice, err := Get("leaf", "Leaf Mold", 0.7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, advice.Disease, test.ShouldEqual, "Leaf Mold")
	test.That(t, advice.Description, test.ShouldEqual, fallbackEntry.description)
}

func TestEveryClassVocabularyDiseaseHasAdvice(t *testing.T) {
	cases := map[string][]string{
		"fruit": {"Anthracnose", "Blossom End Rot", "Botrytis Gray Mold", "Buckeye Rot", "Healthy", "Sunscald"},
		"leaf":  {"Bacterial Spot", "Early Blight", "Healthy", "Late Blight", "Septoria Leaf Spot", "Yellow Leaf Curl"},
		"stem":  {"Blight", "Healthy", "Wilt"},
	}
	for part, diseases := range cases {
		for _, disease := range diseases {
			_, ok := database[part][disease]
			test.That(t, ok, test.ShouldBeTrue)
		}
	}
}

func TestQualifyTiers(t *testing.T) {
	test.That(t, qualify(0.9).Level, test.ShouldEqual, "high")
	test.That(t, qualify(0.85).Level, test.ShouldEqual, "moderate")
	test.That(t, qualify(0.7).Level, test.ShouldEqual, "moderate")
	test.That(t, qualify(0.65).Level, test.ShouldEqual, "low")
	test.That(t, qualify(0.3).Level, test.ShouldEqual, "low")
	test.That(t, qualify(0.3).Note, test.ShouldContainSubstring, "verify diagnosis")
}
