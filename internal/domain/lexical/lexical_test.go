package lexical_test

import (
	"testing"

	"github.com/okian/certrep/internal/domain/lexical"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFindVerificationLink(t *testing.T) {
	Convey("Given certificate text", t, func() {
		Convey("When it contains a URL", func() {
			link, ok := lexical.FindVerificationLink("at https://coursera.org/verify/ABC123 now")

			Convey("Then the URL should be returned", func() {
				So(ok, ShouldBeTrue)
				So(link, ShouldEqual, "https://coursera.org/verify/ABC123")
			})
		})

		Convey("When a credential id appears before any URL", func() {
			link, ok := lexical.FindVerificationLink("ID XK42PQ9 see http://example.com")

			Convey("Then the first match in document order wins", func() {
				So(ok, ShouldBeTrue)
				So(link, ShouldEqual, "XK42PQ9")
			})
		})

		Convey("When an ordinary word is five or more letters long", func() {
			link, ok := lexical.FindVerificationLink("Certificate of completion")

			Convey("Then it matches because the pattern ignores case", func() {
				So(ok, ShouldBeTrue)
				So(link, ShouldEqual, "Certificate")
			})
		})

		Convey("When only short words are present", func() {
			_, ok := lexical.FindVerificationLink("an ok day at sea")

			Convey("Then nothing is found", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When text is empty", func() {
			link, ok := lexical.FindVerificationLink("")

			Convey("Then nothing is found", func() {
				So(ok, ShouldBeFalse)
				So(link, ShouldBeEmpty)
			})
		})
	})
}

func TestParseTimeCommitment(t *testing.T) {
	Convey("Given time commitment phrases", t, func() {
		cases := []struct {
			text string
			want float64
		}{
			{"Approximately 3 weeks to complete", 30},
			{"2 months of study", 80},
			{"10 hours", 10},
			{"1 week", 10},
			{"1 month", 40},
			{"12.5 hrs", 12.5},
			{"40 total hours", 40},
			{"6h of video", 6},
			{"2 MONTHS", 80},
			{"no duration here", 0},
			{"", 0},
			{"5 weeks then 10 hours", 50},
		}

		for _, c := range cases {
			Convey("When parsing "+c.text, func() {
				Convey("Then the hours should match", func() {
					So(lexical.ParseTimeCommitment(c.text), ShouldEqual, c.want)
				})
			})
		}
	})
}

func TestDetectKeywords(t *testing.T) {
	Convey("Given a keyword list", t, func() {
		keywords := []string{"capstone", "project", "portfolio"}

		Convey("When the text contains a keyword in a different case", func() {
			Convey("Then it should be detected", func() {
				So(lexical.DetectKeywords("Final CAPSTONE Project", keywords), ShouldBeTrue)
			})
		})

		Convey("When a keyword appears inside a longer word", func() {
			Convey("Then it should still be detected", func() {
				So(lexical.DetectKeywords("multiprojects", keywords), ShouldBeTrue)
			})
		})

		Convey("When no keyword is present", func() {
			Convey("Then nothing should be detected", func() {
				So(lexical.DetectKeywords("lecture series", keywords), ShouldBeFalse)
				So(lexical.DetectKeywords("", keywords), ShouldBeFalse)
			})
		})

		Convey("When the list is empty or holds blanks", func() {
			Convey("Then nothing should be detected", func() {
				So(lexical.DetectKeywords("anything", nil), ShouldBeFalse)
				So(lexical.DetectKeywords("anything", []string{""}), ShouldBeFalse)
			})
		})
	})
}

func TestCategory(t *testing.T) {
	Convey("Given the keyword categories", t, func() {
		Convey("Then each should have a stable name", func() {
			So(lexical.CategoryProject.String(), ShouldEqual, "project")
			So(lexical.CategoryAssessment.String(), ShouldEqual, "assessment")
			So(lexical.CategoryPrerequisite.String(), ShouldEqual, "prerequisite")
			So(lexical.Category(42).String(), ShouldEqual, "unknown")
		})
	})
}

func TestFold(t *testing.T) {
	Convey("Given mixed case text", t, func() {
		Convey("Then Fold should lowercase it", func() {
			So(lexical.Fold("Google Cloud AI"), ShouldEqual, "google cloud ai")
		})
	})
}
