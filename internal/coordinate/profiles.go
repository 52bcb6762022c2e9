package coordinate

import "github.com/dshills/semspace/pkg/types"

// Profile is a named scoring configuration: a keyword-weight table plus
// per-operation contextual weighting factors. Profiles share the same
// derived-metric formulas; only the constant tables differ.
type Profile struct {
	Name     string
	Keywords map[string][types.NumAxes]float64
	// Weightings maps a named operation to fixed per-axis multipliers.
	Weightings map[string][types.NumAxes]float64
}

// GeneralProfile is the fallback profile for unknown context names.
const GeneralProfile = "general"

// Axis order in weight vectors: love, justice, power, wisdom.
var builtinProfiles = map[string]*Profile{
	"biblical": {
		Name: "biblical",
		Keywords: map[string][types.NumAxes]float64{
			"love":           {0.95, 0.15, 0.05, 0.25},
			"charity":        {0.85, 0.20, 0.00, 0.15},
			"compassion":     {0.90, 0.25, 0.00, 0.30},
			"mercy":          {0.85, 0.35, 0.05, 0.25},
			"grace":          {0.90, 0.20, 0.10, 0.30},
			"kindness":       {0.80, 0.15, 0.00, 0.15},
			"forgiveness":    {0.85, 0.30, 0.00, 0.35},
			"steadfast love": {1.00, 0.25, 0.05, 0.30},
			"justice":        {0.20, 0.95, 0.30, 0.35},
			"righteousness":  {0.30, 0.90, 0.25, 0.40},
			"judgment":       {0.05, 0.85, 0.45, 0.35},
			"law":            {0.00, 0.80, 0.35, 0.30},
			"covenant":       {0.45, 0.70, 0.25, 0.35},
			"equity":         {0.20, 0.85, 0.15, 0.35},
			"power":          {0.05, 0.25, 0.95, 0.20},
			"might":          {0.00, 0.20, 0.90, 0.10},
			"dominion":       {0.00, 0.30, 0.85, 0.20},
			"glory":          {0.25, 0.25, 0.80, 0.30},
			"sovereignty":    {0.10, 0.40, 0.90, 0.35},
			"creation":       {0.30, 0.20, 0.85, 0.45},
			"wisdom":         {0.25, 0.35, 0.15, 0.95},
			"understanding":  {0.20, 0.30, 0.10, 0.90},
			"knowledge":      {0.10, 0.25, 0.20, 0.85},
			"discernment":    {0.15, 0.40, 0.10, 0.90},
			"insight":        {0.15, 0.25, 0.10, 0.85},
			"truth":          {0.30, 0.55, 0.20, 0.80},
			"fear of god":    {0.25, 0.45, 0.25, 0.85},
			"sin":            {-0.55, -0.45, 0.10, -0.35},
			"wrath":          {-0.60, 0.30, 0.55, -0.25},
			"pride":          {-0.35, -0.30, 0.45, -0.55},
			"folly":          {-0.15, -0.20, -0.10, -0.80},
		},
		Weightings: map[string][types.NumAxes]float64{
			"mercy":      {1.15, 0.90, 0.80, 1.00},
			"judgment":   {0.85, 1.20, 1.05, 1.00},
			"creation":   {1.00, 0.95, 1.15, 1.05},
			"redemption": {1.20, 1.05, 0.90, 1.00},
			"guidance":   {1.00, 1.00, 0.85, 1.20},
		},
	},
	"ethical": {
		Name: "ethical",
		Keywords: map[string][types.NumAxes]float64{
			"care":           {0.90, 0.25, 0.00, 0.25},
			"empathy":        {0.90, 0.20, 0.00, 0.30},
			"altruism":       {0.85, 0.30, 0.00, 0.25},
			"solidarity":     {0.75, 0.45, 0.10, 0.20},
			"fairness":       {0.25, 0.90, 0.10, 0.35},
			"rights":         {0.20, 0.85, 0.25, 0.30},
			"duty":           {0.15, 0.80, 0.25, 0.30},
			"accountability": {0.10, 0.80, 0.30, 0.40},
			"authority":      {0.00, 0.35, 0.85, 0.20},
			"autonomy":       {0.20, 0.45, 0.70, 0.40},
			"agency":         {0.15, 0.30, 0.75, 0.35},
			"prudence":       {0.15, 0.35, 0.15, 0.90},
			"integrity":      {0.35, 0.65, 0.20, 0.70},
			"virtue":         {0.45, 0.55, 0.20, 0.65},
			"harm":           {-0.65, -0.40, 0.25, -0.25},
			"deception":      {-0.35, -0.60, 0.15, -0.45},
			"exploitation":   {-0.55, -0.65, 0.45, -0.30},
		},
		Weightings: map[string][types.NumAxes]float64{
			"deliberation": {0.95, 1.10, 0.90, 1.20},
			"advocacy":     {1.10, 1.15, 1.00, 0.95},
		},
	},
	"governance": {
		Name: "governance",
		Keywords: map[string][types.NumAxes]float64{
			"welfare":        {0.80, 0.40, 0.15, 0.30},
			"service":        {0.75, 0.35, 0.10, 0.25},
			"justice":        {0.20, 0.90, 0.30, 0.35},
			"rule of law":    {0.10, 0.95, 0.35, 0.40},
			"due process":    {0.15, 0.90, 0.20, 0.40},
			"transparency":   {0.30, 0.75, 0.10, 0.50},
			"authority":      {0.00, 0.40, 0.90, 0.25},
			"enforcement":    {-0.05, 0.55, 0.85, 0.15},
			"mandate":        {0.05, 0.45, 0.80, 0.25},
			"policy":         {0.15, 0.50, 0.45, 0.60},
			"deliberation":   {0.20, 0.45, 0.15, 0.80},
			"expertise":      {0.10, 0.25, 0.25, 0.85},
			"corruption":     {-0.45, -0.75, 0.40, -0.35},
			"tyranny":        {-0.60, -0.70, 0.75, -0.40},
			"accountability": {0.15, 0.80, 0.25, 0.45},
		},
	},
	GeneralProfile: {
		Name: GeneralProfile,
		Keywords: map[string][types.NumAxes]float64{
			"love":       {0.90, 0.15, 0.05, 0.20},
			"justice":    {0.20, 0.90, 0.25, 0.35},
			"power":      {0.05, 0.25, 0.90, 0.20},
			"wisdom":     {0.25, 0.35, 0.15, 0.90},
			"kindness":   {0.80, 0.15, 0.00, 0.15},
			"fairness":   {0.25, 0.85, 0.10, 0.30},
			"strength":   {0.05, 0.15, 0.80, 0.15},
			"knowledge":  {0.10, 0.20, 0.20, 0.85},
			"balance":    {0.40, 0.40, 0.40, 0.40},
			"compassion": {0.90, 0.25, 0.00, 0.30},
			"control":    {-0.10, 0.20, 0.75, 0.10},
			"cruelty":    {-0.80, -0.45, 0.40, -0.30},
			"ignorance":  {-0.10, -0.15, -0.05, -0.75},
		},
	},
}

// Profiles returns the names of all registered profiles.
func (e *Engine) Profiles() []string {
	names := make([]string, 0, len(e.profiles))
	for name := range e.profiles {
		names = append(names, name)
	}
	return names
}

// profile resolves a context name, falling back to the general profile for
// unknown names. Never returns nil.
func (e *Engine) profile(name string) *Profile {
	if p, ok := e.profiles[name]; ok {
		return p
	}
	return e.profiles[GeneralProfile]
}

// RegisterProfile adds or replaces a named profile.
func (e *Engine) RegisterProfile(p *Profile) {
	if p == nil || p.Name == "" {
		return
	}
	e.profiles[p.Name] = p
}
