package analysis_test

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/certrep/internal/domain/analysis"
	"github.com/okian/certrep/internal/domain/issuer"
	"github.com/okian/certrep/internal/domain/refdata"
	"github.com/okian/certrep/internal/domain/scoring"
	"github.com/okian/certrep/internal/domain/verification"
	. "github.com/smartystreets/goconvey/convey"
)

const courseraText = "Certificate of Completion — Coursera — Data Science Specialization. " +
	"Capstone Project included. 40 total hours. Verify at https://coursera.org/verify/ABC123XYZ"

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestAnalyze(t *testing.T) {
	Convey("Given an engine over the default reference data", t, func() {
		engine := analysis.NewEngine(refdata.Default(), analysis.WithClock(func() time.Time { return fixedTime }))

		Convey("When analyzing the Coursera specialization certificate", func() {
			res := engine.Analyze(analysis.Document{ID: "cert-1", Source: "coursera.txt", Text: courseraText})

			Convey("Then the features match the document", func() {
				So(res.ID, ShouldEqual, "cert-1")
				So(res.Source, ShouldEqual, "coursera.txt")
				So(res.Issuer, ShouldEqual, "coursera")
				So(res.Features.IssuerRep, ShouldEqual, 30)
				So(res.Features.HasProject, ShouldBeTrue)
				So(res.Features.ProjectComplexity, ShouldEqual, 70.0)
				So(res.Features.DurationHours, ShouldEqual, 40.0)
				So(res.Features.AssessmentRigor, ShouldEqual, 20.0)
				So(res.Features.Verified, ShouldBeTrue)
				So(res.Features.VerificationReason, ShouldEqual, verification.MethodRegistry)
			})

			Convey("Then the score is 44.5 in tier 3", func() {
				So(res.Result, ShouldResemble, scoring.Result{Score: 44.5, Tier: 3})
			})

			Convey("Then tags hold the issuer and skills", func() {
				So(res.Skills, ShouldContain, "Data Science")
				So(res.Tags, ShouldContain, "coursera")
				So(res.Tags, ShouldContain, "Data Science")
			})

			Convey("Then the whole text fits in the snippet", func() {
				So(res.RawTextSnippet, ShouldEqual, courseraText)
				So(res.AnalyzedAt, ShouldEqual, fixedTime)
			})
		})

		Convey("When analyzing empty text", func() {
			res := engine.Analyze(analysis.Document{ID: "empty"})

			Convey("Then every default applies", func() {
				So(res.Issuer, ShouldEqual, issuer.Unknown)
				So(res.Features.IssuerRep, ShouldEqual, 25)
				So(res.Resolution.Strategy, ShouldEqual, issuer.StrategyNone)
				So(res.Skills, ShouldNotBeNil)
				So(res.Skills, ShouldBeEmpty)
				So(res.Tags, ShouldNotBeNil)
				So(res.Tags, ShouldBeEmpty)
				// 25*0.35 + 20*0.25 + 25*0.10
				So(res.Result, ShouldResemble, scoring.Result{Score: 16.25, Tier: 4})
			})
		})

		Convey("When the issuer is unknown", func() {
			res := engine.Analyze(analysis.Document{Text: "Zzzz Qqqq"})

			Convey("Then no issuer tag is added", func() {
				So(res.Tags, ShouldNotContain, issuer.Unknown)
			})
		})

		Convey("When an issuer key is also a skill", func() {
			tables, err := refdata.New(
				[]refdata.Issuer{{Key: "aws", Reputation: 80}},
				nil,
				[]string{"aws"},
				refdata.Keywords{},
			)
			So(err, ShouldBeNil)
			res := analysis.NewEngine(tables).Analyze(analysis.Document{Text: "aws certified"})

			Convey("Then tags are deduplicated", func() {
				So(res.Tags, ShouldResemble, []string{"aws"})
			})
		})
	})

	Convey("Given the package-level Analyze", t, func() {
		res := analysis.Analyze(analysis.Document{Text: courseraText}, refdata.Default())

		Convey("Then it produces the same score", func() {
			So(res.Result.Score, ShouldEqual, 44.5)
		})
	})

	Convey("Given custom weights", t, func() {
		w := scoring.DefaultWeights()
		w.Prerequisites = 0.5
		engine := analysis.NewEngine(refdata.Default(), analysis.WithWeights(w))

		Convey("Then prerequisites affect the score", func() {
			base := analysis.Analyze(analysis.Document{Text: "prerequisite: none"}, refdata.Default())
			weighted := engine.Analyze(analysis.Document{Text: "prerequisite: none"})
			So(weighted.Result.Score, ShouldBeGreaterThan, base.Result.Score)
		})
	})

	Convey("Given concurrent callers", t, func() {
		engine := analysis.NewEngine(refdata.Default())

		Convey("Then results are identical", func() {
			var wg sync.WaitGroup
			scores := make([]float64, 16)
			for i := range scores {
				wg.Add(1)
				go func() {
					defer wg.Done()
					scores[i] = engine.Analyze(analysis.Document{Text: courseraText}).Result.Score
				}()
			}
			wg.Wait()
			for _, s := range scores {
				So(s, ShouldEqual, 44.5)
			}
		})
	})
}

func TestSnippet(t *testing.T) {
	Convey("Given long text", t, func() {
		text := strings.Repeat("é", 600)

		Convey("Then the default snippet keeps 500 characters, not bytes", func() {
			res := analysis.Analyze(analysis.Document{Text: text}, refdata.Default())
			So([]rune(res.RawTextSnippet), ShouldHaveLength, 500)
		})

		Convey("Then custom lengths are honored", func() {
			So(analysis.Snippet("abcdef", 3), ShouldEqual, "abc")
			So(analysis.Snippet("abc", 10), ShouldEqual, "abc")
			So(analysis.Snippet("abc", 0), ShouldEqual, "")
			So(analysis.Snippet("añb", 2), ShouldEqual, "añ")
		})

		Convey("Then the engine option applies", func() {
			engine := analysis.NewEngine(refdata.Default(), analysis.WithSnippetLength(10))
			So(engine.Analyze(analysis.Document{Text: text}).RawTextSnippet, ShouldEqual, strings.Repeat("é", 10))
		})
	})
}

func TestResultJSON(t *testing.T) {
	Convey("Given an analysis result", t, func() {
		res := analysis.NewEngine(refdata.Default(), analysis.WithClock(func() time.Time { return fixedTime })).
			Analyze(analysis.Document{ID: "x", Text: courseraText})

		Convey("When encoded", func() {
			data, err := json.Marshal(res)
			So(err, ShouldBeNil)

			var doc map[string]any
			So(json.Unmarshal(data, &doc), ShouldBeNil)

			Convey("Then it has the documented top-level fields", func() {
				for _, k := range []string{"id", "issuer", "features", "skills", "tags", "result", "raw_text_snippet", "analyzed_at"} {
					So(doc, ShouldContainKey, k)
				}
				result := doc["result"].(map[string]any)
				So(result["score"], ShouldEqual, 44.5)
				So(result["tier"], ShouldEqual, 3.0)
				So(doc["issuer_resolution"].(map[string]any)["strategy"], ShouldEqual, "fuzzy")
			})
		})
	})
}
