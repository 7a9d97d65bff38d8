package ember

import "github.com/go-gl/mathgl/mgl32"

func composeTRS(t *Transform) mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// TransformUpdateSystem recomposes World = T*R*S for every dirty,
// parent-less Transform and clears the dirty flag (§4.3 Transform
// update). Entities with a Hierarchy are left to HierarchyUpdateSystem,
// which needs its parent's already-composed World.
func TransformUpdateSystem(cmd *Commands) {
	ecs := cmd.App().ecs
	MakeQuery1[Transform](cmd).WithoutTypes(Hierarchy{}).Map(func(e EntityId, t *Transform) bool {
		if t.Flags&TransformDirty != 0 {
			t.World = composeTRS(t)
			t.Flags &^= TransformDirty
		}
		return true
	})
	_ = ecs
}

// HierarchyUpdateSystem multiplies each Hierarchy child's parent World
// into its own, in up to 8 fixed passes so that multi-level chains
// converge without needing a topological sort (mirrors the teacher's
// pass-loop approach to the same problem). A correct implementation only
// needs as many passes as the deepest chain; 8 covers any realistic
// scene graph depth and the loop exits early once a pass makes no change.
func HierarchyUpdateSystem(cmd *Commands) {
	ecs := cmd.App().ecs
	for pass := 0; pass < 8; pass++ {
		changed := false
		MakeQuery2[Hierarchy, Transform](cmd).Map(func(e EntityId, h *Hierarchy, t *Transform) bool {
			parentTransform, ok := GetComponent[Transform](ecs, h.Parent)
			if !ok {
				if t.Flags&TransformDirty != 0 {
					t.World = composeTRS(t)
					t.Flags &^= TransformDirty
					changed = true
				}
				return true
			}
			newWorld := parentTransform.World.Mul4(composeTRS(t))
			if newWorld != t.World {
				t.World = newWorld
				t.Flags &^= TransformDirty
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}

// SkinUpdateSystem computes joint_matrix[i] = world^-1 * joint_world[i] *
// inverse_bind[i] for every Skin and accumulates a skin-space AABB from
// joint positions (§4.3 Skin update).
func SkinUpdateSystem(cmd *Commands) {
	ecs := cmd.App().ecs
	MakeQuery1[Skin](cmd).Map(func(e EntityId, skin *Skin) bool {
		worldT, ok := GetComponent[Transform](ecs, e)
		if !ok {
			return true
		}
		worldInv := worldT.World.Inv()

		if len(skin.JointMatrices) != len(skin.Joints) {
			skin.JointMatrices = make([]mgl32.Mat4, len(skin.Joints))
			skin.JointNormalMat = make([]mgl32.Mat4, len(skin.Joints))
		}

		var min, max mgl32.Vec3
		first := true
		for i, joint := range skin.Joints {
			jointTransform, ok := GetComponent[Transform](ecs, joint)
			if !ok {
				continue
			}
			jointWorld := jointTransform.World
			joined := worldInv.Mul4(jointWorld).Mul4(skin.InverseBind[i])
			skin.JointMatrices[i] = joined
			skin.JointNormalMat[i] = joined.Inv().Transpose()

			pos := jointWorld.Col(3).Vec3()
			if first {
				min, max = pos, pos
				first = false
			} else {
				min = componentMin(min, pos)
				max = componentMax(max, pos)
			}
		}
		skin.AABBMin, skin.AABBMax = min, max
		return true
	})
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minF(a.X(), b.X()), minF(a.Y(), b.Y()), minF(a.Z(), b.Z())}
}
func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxF(a.X(), b.X()), maxF(a.Y(), b.Y()), maxF(a.Z(), b.Z())}
}
func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// ObjectUpdateSystem transforms each Object's mesh-AABB corners by the
// transform's World matrix and merges the skin AABB (if any) into a
// world-space AABB. This is embarrassingly parallel per-object (§4.3) so
// it is dispatched across the job system rather than run inline.
func ObjectUpdateSystem(cmd *Commands, jobs *JobSystem) {
	ecs := cmd.App().ecs
	objects, entities := GetComponents[Object](ecs)

	counter := jobs.DispatchBatch(len(objects), 64, func(i int) {
		obj := &objects[i]
		mesh, ok := GetComponent[Mesh](ecs, obj.Mesh)
		if !ok {
			return
		}
		transform, ok := GetComponent[Transform](ecs, obj.Transform)
		if !ok {
			return
		}

		min, max := transformAABB(transform.World, mesh.AABBMin, mesh.AABBMax)

		if !obj.Skin.IsNull() {
			if skin, ok := GetComponent[Skin](ecs, obj.Skin); ok {
				min = componentMin(min, skin.AABBMin)
				max = componentMax(max, skin.AABBMax)
			}
		}
		obj.WorldMin, obj.WorldMax = min, max
	})
	WaitForCounter(counter)
	_ = entities
}

// transformAABB transforms the 8 corners of [aabbMin, aabbMax] by world
// and returns the min/max of the transformed corners.
func transformAABB(world mgl32.Mat4, aabbMin, aabbMax mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	corners := [8]mgl32.Vec3{
		{aabbMin.X(), aabbMin.Y(), aabbMin.Z()},
		{aabbMax.X(), aabbMin.Y(), aabbMin.Z()},
		{aabbMin.X(), aabbMax.Y(), aabbMin.Z()},
		{aabbMax.X(), aabbMax.Y(), aabbMin.Z()},
		{aabbMin.X(), aabbMin.Y(), aabbMax.Z()},
		{aabbMax.X(), aabbMin.Y(), aabbMax.Z()},
		{aabbMin.X(), aabbMax.Y(), aabbMax.Z()},
		{aabbMax.X(), aabbMax.Y(), aabbMax.Z()},
	}

	toVec4 := func(v mgl32.Vec3) mgl32.Vec4 { return mgl32.Vec4{v.X(), v.Y(), v.Z(), 1} }

	first := world.Mul4x1(toVec4(corners[0])).Vec3()
	min, max := first, first
	for i := 1; i < 8; i++ {
		p := world.Mul4x1(toVec4(corners[i])).Vec3()
		min = componentMin(min, p)
		max = componentMax(max, p)
	}
	return min, max
}

// LightUpdateSystem copies a Light's entity Transform translation into
// its Position field each frame, when the light also carries a Transform
// (§4.3 Light update).
func LightUpdateSystem(cmd *Commands) {
	MakeQuery2[Light, Transform](cmd).Map(func(e EntityId, light *Light, t *Transform) bool {
		light.Position = t.Translation
		light.Direction = t.Rotation.Rotate(mgl32.Vec3{0, -1, 0})
		return true
	})
}

// ScriptUpdateSystem runs every script with PLAYING set; scripts also
// flagged PLAY_ONCE are cleared back to ScriptNone after running once
// (§4.3 Script update, §4.11 state machine).
func ScriptUpdateSystem(cmd *Commands) {
	ecs := cmd.App().ecs
	MakeQuery1[Script](cmd).Map(func(e EntityId, s *Script) bool {
		if s.Flags&ScriptPlaying == 0 {
			return true
		}
		if s.API != nil {
			s.API.Run(ecs, e)
		}
		if s.Flags&ScriptPlayOnce != 0 {
			s.Flags = ScriptNone
		}
		return true
	})
}

// CoreSystemsModule installs the ECS update systems (§4.3) in the order
// the spec's control flow requires: transform composition before
// hierarchy propagation, before skinning (which reads composed world
// matrices), before object AABB refresh.
type CoreSystemsModule struct {
	Jobs *JobSystem
}

func (m CoreSystemsModule) Install(app *App, cmd *Commands) {
	if m.Jobs == nil {
		m.Jobs = NewJobSystem(0)
	}
	app.addResources(m.Jobs)

	app.UseSystem(System(TransformUpdateSystem).InStage(Update).RunAlways())
	app.UseSystem(System(HierarchyUpdateSystem).InStage(Update).RunAlways())
	app.UseSystem(System(SkinUpdateSystem).InStage(PostUpdate).RunAlways())
	app.UseSystem(System(ObjectUpdateSystem).InStage(PostUpdate).RunAlways())
	app.UseSystem(System(LightUpdateSystem).InStage(PostUpdate).RunAlways())
	app.UseSystem(System(ScriptUpdateSystem).InStage(Update).RunAlways())
}
