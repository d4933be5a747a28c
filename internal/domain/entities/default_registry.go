package entities

// Builtin category IDs.
const (
	CategoryErvah   = "ervah"
	CategoryLav     = "lav"
	CategoryZikah   = "zikah"
	CategoryMitzvah = "mitzvah"
	CategoryUnion   = "union"
)

// Builtin dispute IDs.
const (
	DisputeYeshZikah   = "yesh-zikah"
	DisputeTzarasErvah = "tzaras-ervah"
)

// BuiltinRegistry returns the default rule registry: the prohibition and
// status rules the engine ships with, in their fixed declaration order.
// Each call returns a fresh value, so callers may adjust flags (for example
// IncludeHalfSiblings) without affecting each other.
func BuiltinRegistry() *Registry {
	return &Registry{
		IncludeHalfSiblings: true,
		Categories: []Category{
			{ID: CategoryErvah, Name: "Ervah", Severity: 100, ProhibitsMarriage: true,
				Description: "Forbidden union of the highest gravity, by blood or by marriage bond"},
			{ID: CategoryLav, Name: "Issur Lav", Severity: 80, ProhibitsMarriage: true,
				Description: "Forbidden union by negative commandment"},
			{ID: CategoryZikah, Name: "Zikah", Severity: 70, ProhibitsMarriage: true,
				Description: "Blocked by an outstanding levirate bond"},
			{ID: CategoryMitzvah, Name: "Mitzvah", Severity: 40, ProhibitsMarriage: false,
				Description: "A union that fulfills an obligation"},
			{ID: CategoryUnion, Name: "Union", Severity: 20, ProhibitsMarriage: false,
				Description: "Informational standing between the pair"},
		},
		Disputes: []Dispute{
			{
				ID:    DisputeYeshZikah,
				Title: "Whether the levirate bond extends prohibitions to the widow's relatives",
				Opinions: []Opinion{
					{ID: "yesh-zikah", Name: "Yesh zikah"},
					{ID: "ein-zikah", Name: "Ein zikah"},
				},
				DefaultOpinionID: "yesh-zikah",
			},
			{
				ID:    DisputeTzarasErvah,
				Title: "Whether a yavam may take the co-wife of a woman forbidden to him",
				Opinions: []Opinion{
					{ID: "beis-hillel", Name: "Beis Hillel"},
					{ID: "beis-shammai", Name: "Beis Shammai"},
				},
				DefaultOpinionID: "beis-hillel",
			},
		},
		Rules: []Rule{
			{
				ID: "direct-line", Name: "Direct line", CategoryID: CategoryErvah,
				Description: "Ancestor and descendant: parent, child, grandparent, grandchild",
				Source:      "Vayikra 18:7",
				Condition:   condDirectLine,
			},
			{
				ID: "sibling", Name: "Sibling", CategoryID: CategoryErvah,
				Description: "Brother and sister, full or half, by shared parent or recorded as siblings",
				Source:      "Vayikra 18:9",
				Condition:   condSibling,
			},
			{
				ID: "spouses-sister", Name: "Spouse's sister", CategoryID: CategoryErvah,
				Description: "Sister of a living current spouse",
				Source:      "Vayikra 18:18",
				Condition:   condSisterOfLivingSpouse,
			},
			{
				ID: "brothers-wife", Name: "Brother's wife", CategoryID: CategoryErvah,
				Description: "Wife or widow of a brother, outside the levirate obligation",
				Source:      "Vayikra 18:16",
				Condition:   condWifeOfBrother,
			},
			{
				ID: "eshes-ish", Name: "Married elsewhere", CategoryID: CategoryErvah,
				Description: "Bound by a living betrothal or marriage to a third party",
				Source:      "Vayikra 18:20",
				Condition:   condMarriedElsewhere,
			},
			{
				ID: "machzir-gerushaso", Name: "Returning divorcee", CategoryID: CategoryLav,
				Description: "Remarrying one's divorcee after her marriage to another",
				Source:      "Devarim 24:4",
				Condition:   condRemarryDivorcee,
			},
			{
				ID: "zekukah", Name: "Bound widow", CategoryID: CategoryZikah,
				Description: "A widow bound by a levirate tie may not marry outside her candidates",
				Source:      "Devarim 25:5",
				Condition:   condBoundWidowToStranger,
			},
			{
				ID: "achos-zekukah", Name: "Sister of bound widow", CategoryID: CategoryZikah,
				Description: "Sister of a widow bound to this candidate by a levirate tie",
				Source:      "Yevamos 17b",
				DisputeID:   DisputeYeshZikah,
				Variants: map[string]Condition{
					"yesh-zikah": condSisterOfBoundWidow,
					"ein-zikah":  condNever,
				},
			},
			{
				ID: "tzaras-ervah", Name: "Co-wife of ervah", CategoryID: CategoryErvah,
				Description: "Co-wife of a woman forbidden to the levirate candidate",
				Source:      "Yevamos 13a",
				DisputeID:   DisputeTzarasErvah,
				Variants: map[string]Condition{
					"beis-hillel":  condCoWifeOfErvah,
					"beis-shammai": condNever,
				},
			},
			{
				ID: "married", Name: "Married", CategoryID: CategoryUnion,
				Description: "Currently married to each other",
				Condition:   condMarried,
			},
			{
				ID: "betrothed", Name: "Betrothed", CategoryID: CategoryUnion,
				Description: "Currently betrothed to each other",
				Condition:   condBetrothed,
			},
			{
				ID: "divorced", Name: "Divorced", CategoryID: CategoryUnion,
				Description: "Divorced from each other with no later union",
				Condition:   condDivorced,
			},
			{
				ID: "partners", Name: "Partners", CategoryID: CategoryUnion,
				Description: "In an unmarried union with each other",
				Condition:   condPartners,
			},
			{
				ID: "levirate-bond", Name: "Levirate bond", CategoryID: CategoryMitzvah,
				Description: "Widow and candidate joined by an outstanding levirate tie",
				Source:      "Devarim 25:5",
				Condition:   condLevirateBond,
			},
		},
	}
}

func condNever(_ *EvalContext, _, _ Person) bool {
	return false
}

func condDirectLine(ctx *EvalContext, from, to Person) bool {
	return IsAncestorOf(ctx.Snapshot, from.ID, to.ID) || IsAncestorOf(ctx.Snapshot, to.ID, from.ID)
}

// Status rules always count half-siblings; the registry's
// IncludeHalfSiblings flag gates levirate candidate derivation only.
func condSibling(ctx *EvalContext, from, to Person) bool {
	return AreSiblings(ctx.Snapshot, from.ID, to.ID, true)
}

func condSisterOfLivingSpouse(ctx *EvalContext, from, to Person) bool {
	return sisterOfLivingSpouse(ctx, from, to) || sisterOfLivingSpouse(ctx, to, from)
}

func sisterOfLivingSpouse(ctx *EvalContext, a, b Person) bool {
	if b.Sex != SexFemale {
		return false
	}
	s := ctx.Snapshot
	for _, u := range ActiveUnionsOf(s, a.ID) {
		if u.Type == RelationUnmarriedUnion {
			continue
		}
		spouseID, _ := u.Other(a.ID)
		if spouseID == b.ID || !s.Alive(spouseID) {
			continue
		}
		if AreSiblings(s, spouseID, b.ID, true) {
			return true
		}
	}
	return false
}

func condWifeOfBrother(ctx *EvalContext, from, to Person) bool {
	return wifeOfBrother(ctx, from, to) || wifeOfBrother(ctx, to, from)
}

func wifeOfBrother(ctx *EvalContext, a, b Person) bool {
	if a.Sex != SexMale {
		return false
	}
	s := ctx.Snapshot
	for _, p := range s.people {
		if p.ID == a.ID || p.Sex != SexMale {
			continue
		}
		if !AreSiblings(s, a.ID, p.ID, true) {
			continue
		}
		if !EverSpouses(s, p.ID, b.ID) {
			continue
		}
		if leviratePermits(ctx, a.ID, b.ID) {
			continue
		}
		return true
	}
	return false
}

// leviratePermits reports whether the levirate obligation opens the pair:
// the man is an outstanding candidate for the woman's tie, or resolved it by
// levirate marriage. A release grants no such opening.
func leviratePermits(ctx *EvalContext, manID, widowID string) bool {
	for _, t := range ctx.Ties {
		if t.WidowID != widowID {
			continue
		}
		if t.HasCandidate(manID) {
			return true
		}
		if t.State == TieResolvedByMarriage && t.ResolvedByID == manID {
			return true
		}
	}
	return false
}

func condMarriedElsewhere(ctx *EvalContext, from, to Person) bool {
	return marriedElsewhere(ctx, from, to) || marriedElsewhere(ctx, to, from)
}

func marriedElsewhere(ctx *EvalContext, a, b Person) bool {
	s := ctx.Snapshot
	if !s.Alive(a.ID) {
		return false
	}
	for _, u := range ActiveUnionsOf(s, a.ID) {
		if u.Type == RelationUnmarriedUnion {
			continue
		}
		partnerID, _ := u.Other(a.ID)
		if partnerID == b.ID {
			continue
		}
		if s.Alive(partnerID) {
			return true
		}
	}
	return false
}

func condRemarryDivorcee(ctx *EvalContext, from, to Person) bool {
	return remarryDivorcee(ctx, from, to) || remarryDivorcee(ctx, to, from)
}

func remarryDivorcee(ctx *EvalContext, a, b Person) bool {
	if a.Sex != SexMale || b.Sex != SexFemale {
		return false
	}
	s := ctx.Snapshot
	divorces := DivorcesBetween(s, a.ID, b.ID)
	if len(divorces) == 0 {
		return false
	}
	for _, u := range s.RelationsOf(b.ID) {
		if !u.Type.IsUnion() || u.Type == RelationUnmarriedUnion {
			continue
		}
		other, _ := u.Other(b.ID)
		if other == a.ID {
			continue
		}
		if introducedAfter(s, u, divorces[0]) {
			return true
		}
	}
	return false
}

func condBoundWidowToStranger(ctx *EvalContext, from, to Person) bool {
	return boundWidowToStranger(ctx, from, to) || boundWidowToStranger(ctx, to, from)
}

func boundWidowToStranger(ctx *EvalContext, widow, stranger Person) bool {
	for _, t := range ctx.Ties {
		if t.WidowID != widow.ID || !t.Outstanding() {
			continue
		}
		if !t.HasCandidate(stranger.ID) {
			return true
		}
	}
	return false
}

func condSisterOfBoundWidow(ctx *EvalContext, from, to Person) bool {
	return sisterOfBoundWidow(ctx, from, to) || sisterOfBoundWidow(ctx, to, from)
}

func sisterOfBoundWidow(ctx *EvalContext, yavam, sister Person) bool {
	s := ctx.Snapshot
	for _, t := range ctx.Ties {
		if !t.Outstanding() || !t.HasCandidate(yavam.ID) {
			continue
		}
		if AreSiblings(s, t.WidowID, sister.ID, true) {
			return true
		}
	}
	return false
}

func condCoWifeOfErvah(ctx *EvalContext, from, to Person) bool {
	return coWifeOfErvah(ctx, from, to) || coWifeOfErvah(ctx, to, from)
}

// coWifeOfErvah matches when the yavam's tie to coWife coexists with a tie
// of the same deceased to another widow who is consanguineously forbidden to
// the yavam.
func coWifeOfErvah(ctx *EvalContext, yavam, coWife Person) bool {
	for _, t := range ctx.Ties {
		if t.WidowID != coWife.ID || !t.Outstanding() || !t.HasCandidate(yavam.ID) {
			continue
		}
		for _, other := range ctx.Ties {
			if other.DeceasedID != t.DeceasedID || other.WidowID == t.WidowID {
				continue
			}
			if isConsanguineErvah(ctx, yavam, other.WidowID) {
				return true
			}
		}
	}
	return false
}

func isConsanguineErvah(ctx *EvalContext, a Person, otherID string) bool {
	other, ok := ctx.Snapshot.Person(otherID)
	if !ok {
		return false
	}
	return condDirectLine(ctx, a, other) || condSibling(ctx, a, other) || condSisterOfLivingSpouse(ctx, a, other)
}

func condMarried(ctx *EvalContext, from, to Person) bool {
	s := ctx.Snapshot
	if !s.Alive(from.ID) || !s.Alive(to.ID) {
		return false
	}
	for _, u := range ActiveUnionsBetween(s, from.ID, to.ID) {
		if u.Type == RelationMarriage || u.Type == RelationLevirateMarriage {
			return true
		}
	}
	return false
}

func condBetrothed(ctx *EvalContext, from, to Person) bool {
	s := ctx.Snapshot
	if !s.Alive(from.ID) || !s.Alive(to.ID) {
		return false
	}
	for _, u := range ActiveUnionsBetween(s, from.ID, to.ID) {
		if u.Type == RelationBetrothal {
			return true
		}
	}
	return false
}

func condDivorced(ctx *EvalContext, from, to Person) bool {
	s := ctx.Snapshot
	divorces := DivorcesBetween(s, from.ID, to.ID)
	if len(divorces) == 0 {
		return false
	}
	last := divorces[len(divorces)-1]
	for _, u := range UnionsBetween(s, from.ID, to.ID) {
		if introducedAfter(s, u, last) {
			return false
		}
	}
	return true
}

func condPartners(ctx *EvalContext, from, to Person) bool {
	s := ctx.Snapshot
	if !s.Alive(from.ID) || !s.Alive(to.ID) {
		return false
	}
	for _, u := range ActiveUnionsBetween(s, from.ID, to.ID) {
		if u.Type == RelationUnmarriedUnion {
			return true
		}
	}
	return false
}

func condLevirateBond(ctx *EvalContext, from, to Person) bool {
	return levirateBond(ctx, from, to) || levirateBond(ctx, to, from)
}

func levirateBond(ctx *EvalContext, widow, yavam Person) bool {
	for _, t := range ctx.Ties {
		if t.WidowID == widow.ID && t.HasCandidate(yavam.ID) {
			return true
		}
	}
	return false
}
