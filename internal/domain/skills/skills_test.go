package skills_test

import (
	"testing"

	"github.com/okian/certrep/internal/domain/refdata"
	"github.com/okian/certrep/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTagger(t *testing.T) {
	Convey("Given a vocabulary with short and multi-word skills", t, func() {
		tagger := skills.NewTagger([]string{"Python", "R", "AWS", "Machine Learning", "Node.js", ""})

		Convey("When a single-letter skill only appears inside other words", func() {
			got := tagger.Tag("AWS Solutions Architect, Director of Engineering")

			Convey("Then it should not be reported", func() {
				So(got, ShouldResemble, []string{"AWS"})
			})
		})

		Convey("When a skill is followed by more words", func() {
			got := tagger.Tag("Python programming for everybody")

			Convey("Then it should be reported with vocabulary spelling", func() {
				So(got, ShouldResemble, []string{"Python"})
			})
		})

		Convey("When case differs from the vocabulary", func() {
			got := tagger.Tag("intro to MACHINE LEARNING with python and r")

			Convey("Then matches should be case-insensitive and sorted", func() {
				So(got, ShouldResemble, []string{"Machine Learning", "Python", "R"})
			})
		})

		Convey("When a skill contains regexp metacharacters", func() {
			So(tagger.Tag("Backend with Node.js"), ShouldResemble, []string{"Node.js"})
			So(tagger.Tag("Backend with Nodexjs"), ShouldBeEmpty)
		})

		Convey("When text is empty", func() {
			got := tagger.Tag("")

			Convey("Then an empty, non-nil list is returned", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("Then blank entries never match", func() {
			So(tagger.Tag("plain words only"), ShouldBeEmpty)
		})
	})

	Convey("Given a vocabulary with duplicate entries", t, func() {
		tagger := skills.NewTagger([]string{"SQL", "SQL"})

		Convey("Then results are deduplicated", func() {
			So(tagger.Tag("SQL for data analysis"), ShouldResemble, []string{"SQL"})
		})
	})

	Convey("Given the default vocabulary", t, func() {
		tagger := skills.NewTagger(refdata.Default().Skills())

		Convey("Then common certificate text is tagged", func() {
			got := tagger.Tag("Google Data Analytics: SQL, Tableau and R programming")
			So(got, ShouldContain, "SQL")
			So(got, ShouldContain, "Tableau")
			So(got, ShouldContain, "R")
		})
	})
}
