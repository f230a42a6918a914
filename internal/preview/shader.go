package preview

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const vertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec4 aColor;
layout(location = 3) in vec2 aUV0;
layout(location = 4) in vec2 aUV1;
layout(location = 5) in vec2 aUV2;
layout(location = 6) in vec2 aUV3;

uniform mat4 uViewProj;
uniform mat4 uModel;
uniform int uBaseColorChannel;
uniform int uWaterChannel;

out vec3 vNormal;
out vec4 vColor;
out vec2 vBaseUV;
out vec2 vWaterUV;

void main() {
    vec2 uvs[4] = vec2[4](aUV0, aUV1, aUV2, aUV3);
    vBaseUV = uvs[clamp(uBaseColorChannel, 0, 3)];
    vWaterUV = uvs[clamp(uWaterChannel, 0, 3)];
    vNormal = mat3(uModel) * aNormal;
    vColor = aColor;
    gl_Position = uViewProj * uModel * vec4(aPosition, 1.0);
}
`

const fragmentShader = `#version 410 core
in vec3 vNormal;
in vec4 vColor;
in vec2 vBaseUV;
in vec2 vWaterUV;

uniform vec4 uBaseColorFactor;
uniform bool uHasBaseColor;
uniform sampler2D uBaseColor;
uniform int uWaterType;
uniform sampler2D uWaterMask;
uniform vec2 uWaterTranslation;
uniform float uWaterScale;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
    vec4 color = uBaseColorFactor * vColor;
    if (uHasBaseColor) {
        color *= texture(uBaseColor, vBaseUV);
    }

    float water = 0.0;
    if (uWaterType == 1) {
        water = 1.0;
    } else if (uWaterType == 2) {
        water = texture(uWaterMask, vWaterUV * uWaterScale + uWaterTranslation).r;
    }
    color.rgb = mix(color.rgb, vec3(0.1, 0.3, 0.6), water * 0.7);

    float diffuse = max(dot(normalize(vNormal), normalize(-uLightDir)), 0.0);
    FragColor = vec4(color.rgb * (0.35 + 0.65 * diffuse), color.a);
}
`

// program is the linked preview shader with its uniform locations.
type program struct {
	id uint32

	viewProj, model                   int32
	baseColorChannel, waterChannel    int32
	baseColorFactor, hasBaseColor     int32
	baseColor, waterMask              int32
	waterType, waterTrans, waterScale int32
	lightDir                          int32
}

func newProgram() (*program, error) {
	id, err := compileProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}
	u := func(name string) int32 {
		return gl.GetUniformLocation(id, gl.Str(name+"\x00"))
	}
	return &program{
		id:               id,
		viewProj:         u("uViewProj"),
		model:            u("uModel"),
		baseColorChannel: u("uBaseColorChannel"),
		waterChannel:     u("uWaterChannel"),
		baseColorFactor:  u("uBaseColorFactor"),
		hasBaseColor:     u("uHasBaseColor"),
		baseColor:        u("uBaseColor"),
		waterMask:        u("uWaterMask"),
		waterType:        u("uWaterType"),
		waterTrans:       u("uWaterTranslation"),
		waterScale:       u("uWaterScale"),
		lightDir:         u("uLightDir"),
	}, nil
}

func (p *program) delete() {
	gl.DeleteProgram(p.id)
}

// compileProgram compiles vertex and fragment shaders and links them.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(prog, logLen, nil, &log[0])
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link: %s", string(log))
	}
	return prog, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}
	return shader, nil
}
