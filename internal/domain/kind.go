package domain

type ChildCollection string

const (
	CollectionAddresses       ChildCollection = "addresses"
	CollectionRepresentatives ChildCollection = "representatives"
	CollectionClassifications ChildCollection = "classifications"
	CollectionProducts        ChildCollection = "products"
	CollectionDocuments       ChildCollection = "documents"
)

// KindSchema describes which child collections an application kind carries.
// Dispatch goes through this table, never through interpolated identifiers.
type KindSchema struct {
	Kind        ApplicationKind
	Label       string
	Collections []ChildCollection
}

var kindSchemas = map[ApplicationKind]KindSchema{
	KindOrdinaryCompany: {
		Kind:  KindOrdinaryCompany,
		Label: "Ordinary Company",
		Collections: []ChildCollection{
			CollectionAddresses, CollectionRepresentatives,
			CollectionClassifications, CollectionProducts, CollectionDocuments,
		},
	},
	KindAssociateCompany: {
		Kind:  KindAssociateCompany,
		Label: "Associate Company",
		Collections: []ChildCollection{
			CollectionAddresses, CollectionRepresentatives,
			CollectionClassifications, CollectionDocuments,
		},
	},
	KindAssociateMember: {
		Kind:  KindAssociateMember,
		Label: "Associate Member",
		Collections: []ChildCollection{
			CollectionAddresses, CollectionDocuments,
		},
	},
	KindInternationalCompany: {
		Kind:  KindInternationalCompany,
		Label: "International Company",
		Collections: []ChildCollection{
			CollectionAddresses, CollectionRepresentatives,
			CollectionProducts, CollectionDocuments,
		},
	},
}

// SchemaFor returns the schema descriptor for a kind.
func SchemaFor(kind ApplicationKind) (KindSchema, bool) {
	s, ok := kindSchemas[kind]
	return s, ok
}

// ValidKind reports whether the tag names one of the four application kinds.
func ValidKind(kind ApplicationKind) bool {
	_, ok := kindSchemas[kind]
	return ok
}

func (s KindSchema) Carries(c ChildCollection) bool {
	for _, have := range s.Collections {
		if have == c {
			return true
		}
	}
	return false
}

// ValidateUpdate rejects updates that touch collections the kind does not
// carry.
func (s KindSchema) ValidateUpdate(u *ApplicationUpdate) error {
	if u == nil {
		return nil
	}
	check := func(c ChildCollection, supplied bool) error {
		if supplied && !s.Carries(c) {
			return ErrValidationFailed
		}
		return nil
	}
	if err := check(CollectionAddresses, u.Addresses != nil); err != nil {
		return err
	}
	if err := check(CollectionRepresentatives, u.Representatives != nil); err != nil {
		return err
	}
	if err := check(CollectionClassifications, u.Classifications != nil); err != nil {
		return err
	}
	if err := check(CollectionProducts, u.Products != nil); err != nil {
		return err
	}
	return check(CollectionDocuments, u.Documents != nil)
}
