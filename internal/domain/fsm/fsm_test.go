package fsm_test

import (
	"errors"
	"testing"

	"github.com/okian/ghostrace/internal/domain/fsm"
	"github.com/okian/ghostrace/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type change struct{ from, to model.State }

func TestMachine(t *testing.T) {
	Convey("Given a machine in idle with a listener", t, func() {
		m := fsm.New(model.StateIdle)
		var got []change
		m.OnChange(func(from, to model.State) { got = append(got, change{from, to}) })

		Convey("When walking the full race flow", func() {
			for _, s := range []model.State{
				model.StateSearching, model.StateInRace, model.StateExtendOffer,
				model.StateInRace, model.StateEnded, model.StateIdle,
			} {
				changed, err := m.Set(s)
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)
			}

			Convey("Then each change is observed once", func() {
				So(len(got), ShouldEqual, 6)
				So(got[0], ShouldResemble, change{model.StateIdle, model.StateSearching})
				So(m.State(), ShouldEqual, model.StateIdle)
			})
		})

		Convey("When setting the current state", func() {
			changed, err := m.Set(model.StateIdle)

			Convey("Then nothing fires", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When the transition is illegal", func() {
			changed, err := m.Set(model.StateEnded)

			Convey("Then it is rejected and the state stays", func() {
				So(changed, ShouldBeFalse)
				So(errors.Is(err, fsm.ErrIllegalTransition), ShouldBeTrue)
				So(m.State(), ShouldEqual, model.StateIdle)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When forcing a recovery state", func() {
			So(m.Force(model.StateEnded), ShouldBeTrue)
			So(m.Force(model.StateEnded), ShouldBeFalse)
			So(len(got), ShouldEqual, 1)
		})

		Convey("When closed", func() {
			m.Close()
			_, err := m.Set(model.StateSearching)

			Convey("Then listeners no longer fire", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})
	})

	Convey("Given the transition table", t, func() {
		So(fsm.Allowed(model.StateInRace, model.StateDisabled), ShouldBeTrue)
		So(fsm.Allowed(model.StateDisabled, model.StateIdle), ShouldBeTrue)
		So(fsm.Allowed(model.StateIdle, model.StateInRace), ShouldBeFalse)
		So(fsm.Allowed(model.StateEnded, model.StateExtendOffer), ShouldBeFalse)
		So(fsm.Allowed(model.StateIdle, model.StateClaimable), ShouldBeFalse)
		So(fsm.Allowed(model.StateIdle, model.StateCooldown), ShouldBeFalse)
	})
}
