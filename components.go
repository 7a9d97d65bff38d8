package ember

import "github.com/go-gl/mathgl/mgl32"

// Tag names an entity and is what CreateEntity's name→entity map indexes.
type Tag struct {
	Name string
}

// LayerMask is a visibility/propagation bitmask.
type LayerMask uint32

// Layer controls which views draw an entity and which children inherit
// that restriction.
type Layer struct {
	Visibility  LayerMask
	Propagation LayerMask
}

// TransformFlags tracks whether Transform's cached World matrix needs
// recomposing this frame.
type TransformFlags uint8

const TransformDirty TransformFlags = 1 << 0

// Transform is the built-in TRS component; World is cached and only
// recomposed by the transform-update system when Flags carries
// TransformDirty (§4.3 Transform update).
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	World       mgl32.Mat4
	Flags       TransformFlags
}

// NewTransform returns an identity transform, dirty so the first update
// pass composes World.
func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		World:    mgl32.Ident4(),
		Flags:    TransformDirty,
	}
}

// Hierarchy points a child entity at its parent; the hierarchy-update
// system multiplies the parent's World into the child's (§4.3).
type Hierarchy struct {
	Parent EntityId
}

// ScriptFlags is the script state machine (§4.11): NONE -> PLAYING ->
// (PLAY_ONCE) -> NONE.
type ScriptFlags uint8

const (
	ScriptNone     ScriptFlags = 0
	ScriptPlaying  ScriptFlags = 1 << 0
	ScriptPlayOnce ScriptFlags = 1 << 1
)

// ScriptAPI is the resolved vtable a Script component's file name binds
// to, looked up through the api registry (§4.1).
type ScriptAPI interface {
	Run(ecs *Ecs, self EntityId)
}

type Script struct {
	File  string
	Flags ScriptFlags
	API   ScriptAPI
}

// ObjectFlags marks which render buckets an Object participates in
// (§4.9's visible_deferred/visible_forward/visible_probe split).
type ObjectFlags uint32

const (
	ObjectDeferred ObjectFlags = 1 << iota
	ObjectForward
	ObjectCastsShadows
	ObjectVisibleToProbes
)

// Object binds a Mesh to a Transform and caches the world-space AABB the
// object-update system (parallel per-object, §4.3) and culling (§4.9)
// consume.
type Object struct {
	Mesh      EntityId
	Transform EntityId
	Skin      EntityId
	WorldMin  mgl32.Vec3
	WorldMax  mgl32.Vec3
	Flags     ObjectFlags
}

// VertexStreamMask records which optional per-vertex attributes a Mesh
// carries; the popcount of its non-skin bits (PackedStride, which leaves
// out Joints01/Weights01) is the packed-attribute stride in vec4 slots
// (§4.4's packed per-vertex attribute layout).
type VertexStreamMask uint32

const (
	StreamNormal VertexStreamMask = 1 << iota
	StreamTangent
	StreamColor0
	StreamUV01
	StreamUV23
	StreamUV45
	StreamUV67
	StreamJoints01
	StreamWeights01
)

// skinStreamMask marks the two streams that never land in the packed
// data stream: they're written to the scene's separate skin vertex
// buffer instead (§4.4), so PackedStride must not count them.
const skinStreamMask = StreamJoints01 | StreamWeights01

// PackedStride is the packed per-vertex data stream's stride in vec4
// slots: the popcount of every set stream bit except the two skin
// streams, which packVertexData never writes into DataBuffer.
func (m VertexStreamMask) PackedStride() int {
	n := 0
	for b := VertexStreamMask(1); b != 0 && b <= m; b <<= 1 {
		if b&skinStreamMask != 0 {
			continue
		}
		if m&b != 0 {
			n++
		}
	}
	return n
}

// Mesh holds CPU-side vertex streams and indices prior to scene staging
// (§3's Built-in component types; §4.4 consumes these fields directly).
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Tangents  []mgl32.Vec4
	Colors0   []mgl32.Vec4
	Colors1   []mgl32.Vec4
	UV        [8][]mgl32.Vec2 // UV0..UV7
	Joints0   [][2]uint32
	Joints1   [][2]uint32
	Weights0  []mgl32.Vec4
	Weights1  []mgl32.Vec4
	Indices   []uint32

	AABBMin mgl32.Vec3
	AABBMax mgl32.Vec3

	Material EntityId
	Skin     EntityId

	StreamMask VertexStreamMask

	// SourcePath is kept for debug/reload purposes — the original loader
	// (pl_model_loader_ext.c) stamps every staged mesh with the file it
	// came from so a hot-reloaded asset can be traced back.
	SourcePath string
}

type BlendMode uint8

const (
	BlendOpaque BlendMode = iota
	BlendMask
	BlendAlpha
)

type MaterialFlags uint32

const MaterialDoubleSided MaterialFlags = 1 << 0

// Material is the CPU-side PBR material; TextureSlot indices reference
// the scene's bindless texture table once staged.
type Material struct {
	BaseColorFactor mgl32.Vec4
	EmissiveFactor  mgl32.Vec3
	Metallic        float32
	Roughness       float32
	AlphaCutoff     float32
	OcclusionStr    float32
	EmissiveStr     float32

	// Index order: base color, metallic-roughness, normal, occlusion, emissive.
	UVSetIndices [5]int32
	TextureSlots [5]TextureHandle

	Blend BlendMode
	Flags MaterialFlags
}

// Skin carries joint entities and their inverse-bind matrices; the
// skin-update system computes per-joint matrices and a skin-space AABB
// each frame (§4.3).
type Skin struct {
	Joints         []EntityId
	InverseBind    []mgl32.Mat4
	JointMatrices  []mgl32.Mat4 // computed per frame
	JointNormalMat []mgl32.Mat4 // transpose(inverse(joint)), for normals
	AABBMin        mgl32.Vec3
	AABBMax        mgl32.Vec3
}

type LightType uint8

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

type LightFlags uint32

const (
	LightCastsShadow LightFlags = 1 << iota
	LightMultiViewportShadows
)

const MaxCascades = 4

// Light mirrors GPULight's CPU-side source of truth plus the CSM/shadow
// bookkeeping fields §4.6/§4.7 need (cascade splits, shadow resolution).
type Light struct {
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
	Radius    float32
	InnerCone float32
	OuterCone float32

	Position  mgl32.Vec3 // copied from Transform by the light-update system
	Direction mgl32.Vec3

	CascadeCount     int
	CascadeSplits    [MaxCascades]float32
	ShadowResolution int
	Flags            LightFlags

	// Populated by the shadow pass each frame the light casts shadows.
	CascadeViewProj [MaxCascades]mgl32.Mat4
	ShadowRectX     int
	ShadowRectY     int
	ShadowMapIndex  int32
}

type ProbeFlags uint32

const (
	ProbeDirty ProbeFlags = 1 << iota
	ProbeRealtime
)

// EnvironmentProbe captures a cube at its entity's Transform position
// (§4.8). Faces* hold the per-face render targets during capture; the
// three Env* fields are the bindless slots a GPUProbeData row references
// after prefiltering.
type EnvironmentProbe struct {
	Range          float32
	Resolution     int
	SampleCount    int
	UpdateInterval int
	Flags          ProbeFlags

	framesSinceUpdate int

	GGXEnvSlot        TextureHandle
	LambertianEnvSlot TextureHandle
	GGXLutSlot        TextureHandle

	BoxMin              mgl32.Vec3
	BoxMax              mgl32.Vec3
	ParallaxCorrection  bool
}

// AdvanceFrame increments the probe's internal since-last-capture
// counter; used by the REALTIME update cadence (§4.11).
func (p *EnvironmentProbe) AdvanceFrame() {
	p.framesSinceUpdate++
}

func (p *EnvironmentProbe) FramesSinceUpdate() int {
	return p.framesSinceUpdate
}

// Humanoid maps named bone slots (e.g. "Hips", "Spine") to joint
// entities, for retargeting and IK built on top of Skin.
type Humanoid struct {
	Bones map[string]EntityId
}

type AnimationChannel struct {
	Target        EntityId
	TargetPath    string // "translation" | "rotation" | "scale"
	SamplerIndex  int
}

type Animation struct {
	Channels []AnimationChannel
}

type Interpolation uint8

const (
	InterpLinear Interpolation = iota
	InterpStep
	InterpCubicSpline
)

type AnimationData struct {
	KeyTimes      []float32
	KeyValues     []mgl32.Vec4
	Interpolation Interpolation
}
