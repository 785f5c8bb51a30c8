package xmlmap

import "github.com/beevik/etree"

// RegimeKind tells which tax regime a line item's ICMS group belongs to.
type RegimeKind int

const (
	RegimeAbsent RegimeKind = iota
	// RegimeSimplified is the Simples Nacional group, coded by CSOSN.
	RegimeSimplified
	// RegimeStandard is the normal regime, coded by CST.
	RegimeStandard
)

func (k RegimeKind) String() string {
	switch k {
	case RegimeSimplified:
		return "simplified"
	case RegimeStandard:
		return "standard"
	default:
		return "absent"
	}
}

// PrincipalRegimeCode is the resolved tax situation code of a line item.
type PrincipalRegimeCode struct {
	Kind RegimeKind
	Code string
	Tag  string // ICMS group the code was read from
}

// icmsGroups is the resolution order for the children of imposto/ICMS.
var icmsGroups = []string{
	"ICMS00", "ICMS02", "ICMS10", "ICMS15", "ICMS20", "ICMS30", "ICMS40",
	"ICMS51", "ICMS53", "ICMS60", "ICMS61", "ICMS70", "ICMS90",
	"ICMSPart", "ICMSST",
	"ICMSSN101", "ICMSSN102", "ICMSSN201", "ICMSSN202", "ICMSSN500", "ICMSSN900",
}

// resolveRegime reads the tax situation from an item's imposto element. The
// first known ICMS group present decides the result, even when it carries
// neither CSOSN nor CST.
func (t *Tree) resolveRegime(imposto *etree.Element) PrincipalRegimeCode {
	icms := t.FindScope("ICMS", imposto)
	if icms == nil {
		return PrincipalRegimeCode{}
	}
	for _, tag := range icmsGroups {
		group := t.Child(icms, tag)
		if group == nil {
			continue
		}
		if code := t.FindText("CSOSN", group, ""); code != "" {
			return PrincipalRegimeCode{Kind: RegimeSimplified, Code: code, Tag: tag}
		}
		if code := t.FindText("CST", group, ""); code != "" {
			return PrincipalRegimeCode{Kind: RegimeStandard, Code: code, Tag: tag}
		}
		return PrincipalRegimeCode{Tag: tag}
	}
	return PrincipalRegimeCode{}
}
