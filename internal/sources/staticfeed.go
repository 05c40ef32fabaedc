package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackzampolin/lectern/internal/types"
)

// StaticFeed serves built-in subject excerpts. It keeps the pipeline
// usable offline and in tests, and gives heading extraction realistic
// input when no remote feed is configured.
type StaticFeed struct{}

// NewStaticFeed creates the built-in excerpt fetcher.
func NewStaticFeed() *StaticFeed {
	return &StaticFeed{}
}

// Name returns the fetcher identifier.
func (f *StaticFeed) Name() string {
	return "static"
}

// FetchSources returns one built-in excerpt for the request's subject,
// or nothing when the subject has no excerpt.
func (f *StaticFeed) FetchSources(_ context.Context, req types.Request) ([]types.SourceDocument, error) {
	excerpt, ok := subjectExcerpts[strings.ToLower(strings.TrimSpace(req.Subject))]
	if !ok {
		return nil, nil
	}

	text := fmt.Sprintf("%s\n\n%s", strings.ToUpper(req.ChapterName), excerpt)
	return []types.SourceDocument{{
		URL:              "static://" + strings.ToLower(strings.ReplaceAll(req.Subject, " ", "-")),
		Kind:             types.SourceKindNotes,
		Title:            fmt.Sprintf("Built-in %s notes", req.Subject),
		RawText:          text,
		ConfidenceWeight: NotesConfidence,
	}}, nil
}

var subjectExcerpts = map[string]string{
	"physics": `Physical quantities are measured by comparison with agreed standards called units. Base quantities such as length, mass, and time have base units, and all other quantities derive from them. Measurements always carry some uncertainty, and significant figures express how precisely a value is known.

Vectors represent quantities that have both magnitude and direction. A vector is drawn as an arrow whose length shows the magnitude and whose head shows the direction. Vectors add by the head to tail rule, and any vector can be resolved into rectangular components along the coordinate axes. The scalar product of two vectors gives a number, while the vector product gives another vector perpendicular to both.

A body is in equilibrium when the net force and the net torque acting on it are both zero. The first condition of equilibrium concerns forces, and the second concerns torques. Torque is the turning effect of a force and equals the product of the force and its moment arm.

Motion is described by displacement, velocity, and acceleration. Uniformly accelerated motion obeys three standard equations relating these quantities to time. Newton's laws of motion connect force with the change in a body's state of motion, and the law of conservation of momentum follows from them.

Work is done when a force moves its point of application. Energy is the capacity to do work, and it changes form without being created or destroyed. Power measures how quickly work is done.`,

	"chemistry": `Matter is made of atoms, and atoms combine in fixed ratios to form compounds. The mole counts particles by mass, and stoichiometry uses mole ratios from balanced equations to relate the amounts of reactants and products.

Gases respond to changes in pressure, volume, and temperature in regular ways described by the gas laws. The kinetic molecular theory explains these laws by treating a gas as particles in constant random motion. Liquids and solids show stronger intermolecular forces, which give rise to properties such as surface tension, viscosity, and fixed crystal structures.

The modern atomic model places electrons in orbitals arranged in shells around the nucleus. Electron configuration determines an element's position in the periodic table and its chemical behavior. Chemical bonds form when atoms share or transfer electrons, producing covalent or ionic compounds with characteristic properties.`,

	"biology": `Living things are built from cells, the basic units of structure and function. Cells contain organelles that divide the work of life, from energy conversion in mitochondria to protein assembly on ribosomes.

Organisms are classified into groups based on shared characteristics, from kingdoms down to species. Classification reflects evolutionary relationships and makes the diversity of life manageable for study.

Enzymes are biological catalysts that speed up reactions without being consumed. Each enzyme acts on a specific substrate, and its activity depends on temperature and pH. Bioenergetics covers how organisms capture energy in photosynthesis and release it in respiration.`,

	"mathematics": `A function assigns to each input exactly one output. Functions are described by formulas, tables, and graphs, and they model how one quantity depends on another.

Quadratic equations have the standard form with a squared term, and they are solved by factoring, completing the square, or the quadratic formula. The discriminant tells how many real solutions an equation has.

Matrices organize numbers in rows and columns. Matrix addition and multiplication follow definite rules, and determinants decide whether a matrix is invertible. Systems of linear equations are solved compactly with matrices.

Trigonometric ratios relate the angles of a right triangle to the lengths of its sides. The unit circle extends these ratios to all angles, and trigonometric identities connect the ratios to one another.`,
}
